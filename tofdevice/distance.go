// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tofdevice

import "math/rand"

const (
	distanceMin = 100
	distanceMax = 2000
	walkStep    = 50
)

// distanceWalker produces the simulated distance reading: a 16-bit value
// bounded to [distanceMin, distanceMax], updated by a bounded random walk
// of ±walkStep per completed measurement.
type distanceWalker struct {
	rng     *rand.Rand
	current int
}

func newDistanceWalker(seed int64) *distanceWalker {
	return &distanceWalker{rng: rand.New(rand.NewSource(seed)), current: (distanceMin + distanceMax) / 2}
}

// next advances the walk by one completed measurement and returns the new
// reading.
func (d *distanceWalker) next() uint16 {
	delta := d.rng.Intn(2*walkStep+1) - walkStep
	d.current += delta
	if d.current < distanceMin {
		d.current = distanceMin
	}
	if d.current > distanceMax {
		d.current = distanceMax
	}
	return uint16(d.current)
}
