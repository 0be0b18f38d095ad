// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Responder-side bit layer (spec §4.3). The responder never drives the
// clock, so every wait here is a bounded poll on an observed level rather
// than a fixed sleep. Grounded on the same bitbang I²C code as
// bit_controller.go for the overall open-drain wrapper shape, but the
// waits themselves are original: that reference implementation's responder
// path predates the bounded-wait discipline this package requires (see
// design note on blocking polling loops).
package i2cproto

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// busEvent reports an out-of-band condition observed by sampleBitOnClock
// while it was expecting an ordinary data bit.
type busEvent int

const (
	evNone busEvent = iota
	evStart
	evStop
)

const pollInterval = 5 * time.Microsecond

// waitWhile polls level() until it differs from want, or until timeout
// elapses, whichever comes first. It is the single bounded-wait primitive
// every other responder-side wait in this file is built from.
func (c *BusConfig) waitWhile(want gpio.Level, level func() gpio.Level, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for level() == want {
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		sleep(pollInterval)
	}
	return nil
}

// waitForStart blocks until a START condition is observed: first confirms
// the bus is idle (both lines released), then waits for a high-to-low
// data transition while the clock remains high.
func (c *BusConfig) waitForStart(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for c.Clock.ReadLevel() != gpio.High || c.Data.ReadLevel() != gpio.High {
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		sleep(pollInterval)
	}
	for {
		if c.Data.ReadLevel() == gpio.Low {
			if c.Clock.ReadLevel() == gpio.High {
				return nil
			}
			return ErrTimeout
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		sleep(pollInterval)
	}
}

// sampleBitOnClock waits for the clock to rise, reads the data line, then
// waits for the clock to fall — the ordinary path. A START/STOP condition
// only ever appears as a data transition while the clock stays high, which
// can only happen during the post-rise observation window; when detected,
// it is reported via event instead of a misleading bit value.
func (c *BusConfig) sampleBitOnClock(timeout time.Duration) (bit bool, event busEvent, err error) {
	if err = c.waitWhile(gpio.Low, c.Clock.ReadLevel, timeout); err != nil {
		return false, evNone, err
	}
	bit = c.Data.ReadLevel() == gpio.High

	deadline := time.Now().Add(timeout)
	last := c.Data.ReadLevel()
	for c.Clock.ReadLevel() == gpio.High {
		cur := c.Data.ReadLevel()
		if cur != last {
			if last == gpio.High && cur == gpio.Low {
				return bit, evStart, nil
			}
			return bit, evStop, nil
		}
		if time.Now().After(deadline) {
			return false, evNone, ErrTimeout
		}
		sleep(pollInterval)
	}
	return bit, evNone, nil
}

// emitBitOnClock waits for the clock to fall, sets the data line, waits for
// the clock to rise (data must already be stable), then waits for the
// clock to fall again.
func (c *BusConfig) emitBitOnClock(high bool, timeout time.Duration) error {
	if err := c.waitWhile(gpio.High, c.Clock.ReadLevel, timeout); err != nil {
		return err
	}
	if err := c.Data.Set(high); err != nil {
		return err
	}
	if err := c.waitWhile(gpio.Low, c.Clock.ReadLevel, timeout); err != nil {
		return err
	}
	if err := c.waitWhile(gpio.High, c.Clock.ReadLevel, timeout); err != nil {
		return err
	}
	return nil
}
