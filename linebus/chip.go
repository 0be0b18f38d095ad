// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package linebus

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// chipBackend is the minimal per-OS capability this package needs: resolve
// a line by its chip-local offset, and release the chip's own resources.
// chardev_linux.go implements it against the real Linux GPIO v2 chardev;
// chardev_other.go implements it as an in-memory stand-in everywhere else,
// so the packages built on linebus can be developed and tested off real
// hardware.
type chipBackend interface {
	line(offset int) (gpio.PinIO, error)
	close() error
}

// Chip is the external collaborator spec's GPIO capability describes:
// opening and configuring the underlying chip so line offsets can be
// turned into Line values. It is the only place in this repository that
// knows a chip device path exists; everything above it (the bit layer,
// the engines, the device emulation) only ever sees Line.
type Chip struct {
	backend chipBackend
}

// OpenChip opens the chip device at path (e.g. "/dev/gpiochip0" on Linux)
// and returns a handle lines can be requested from.
func OpenChip(path string) (*Chip, error) {
	b, err := openChardevChip(path)
	if err != nil {
		return nil, err
	}
	return &Chip{backend: b}, nil
}

// RequestLine resolves a line by its chip-local offset and releases it
// (input, pulled high) so it starts in the bus-idle state.
func (c *Chip) RequestLine(offset int) (*Line, error) {
	p, err := c.backend.line(offset)
	if err != nil {
		return nil, fmt.Errorf("linebus: request line %d: %w", offset, err)
	}
	l := Wrap(p)
	if err := l.Release(); err != nil {
		return nil, err
	}
	return l, nil
}

// Close releases the chip's underlying resources. Lines requested from it
// remain valid gpio.PinIO wrappers until the process exits; there is no
// explicit per-line release beyond reconfiguring it.
func (c *Chip) Close() {
	_ = c.backend.close()
}
