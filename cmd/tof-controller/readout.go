// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// liveReadout prints one colored bar per measurement, green near the
// sensor and red at the far end of the documented [100, 2000]mm range,
// the same ansi256.Default.Block-over-go-colorable technique periph's
// console LED-strip emulator uses to turn a byte stream into a terminal
// display without any real hardware.
type liveReadout struct {
	w io.Writer
}

func newLiveReadout() *liveReadout {
	return &liveReadout{w: colorable.NewColorableStdout()}
}

func (r *liveReadout) show(cycle int, distanceMM uint16) {
	const lo, hi = 100, 2000
	frac := float64(int(distanceMM)-lo) / float64(hi-lo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	c := color.NRGBA{
		R: uint8(frac * 255),
		G: uint8((1 - frac) * 255),
		B: 0,
		A: 255,
	}
	fmt.Fprintf(r.w, "\r\033[0m#%-4d %s %4dmm\033[0m", cycle, ansi256.Default.Block(c), distanceMM)
}

func (r *liveReadout) done() {
	fmt.Fprintln(r.w)
}
