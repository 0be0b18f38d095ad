// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Byte layer (spec §4.4): composes bit primitives into 8-bit transfers plus
// one acknowledgement bit, for both roles.
package i2cproto

import "time"

// transmitByte (controller side) emits b most-significant-bit first, then
// releases the data line and samples the ack bit. ack true means the
// responder pulled the line low.
func (c *BusConfig) transmitByte(b byte) (ack bool, err error) {
	for i := 7; i >= 0; i-- {
		bit := (b>>uint(i))&1 == 1
		if err := c.emitBit(bit); err != nil {
			return false, err
		}
	}
	level, err := c.sampleBit()
	if err != nil {
		return false, err
	}
	return !level, nil
}

// receiveByte (controller side) samples 8 bits most-significant-bit first,
// then drives (ack) or releases (nack) the data line for one more clock.
func (c *BusConfig) receiveByte(ack bool) (byte, error) {
	var b byte
	for i := 0; i < 8; i++ {
		bit, err := c.sampleBit()
		if err != nil {
			return 0, err
		}
		b <<= 1
		if bit {
			b |= 1
		}
	}
	if err := c.emitBit(!ack); err != nil {
		return 0, err
	}
	return b, nil
}

// receiveByteOnClock (responder side) is the analogous primitive driven by
// the controller's clock instead of producing it; returns the 8 sampled
// bits and any busEvent observed mid-byte (a repeated START or a STOP cuts
// the byte short, which the caller must check for before trusting b).
func (c *BusConfig) receiveByteOnClock(timeout time.Duration) (b byte, event busEvent, err error) {
	for i := 0; i < 8; i++ {
		bit, ev, err := c.sampleBitOnClock(timeout)
		if err != nil {
			return 0, evNone, err
		}
		if ev != evNone {
			return 0, ev, nil
		}
		b <<= 1
		if bit {
			b |= 1
		}
	}
	return b, evNone, nil
}

// transmitByteOnClock (responder side) emits b most-significant-bit first
// on the controller's clock, then releases the data line so the following
// ack/nack bit is the controller's alone to drive.
func (c *BusConfig) transmitByteOnClock(b byte, timeout time.Duration) error {
	for i := 7; i >= 0; i-- {
		bit := (b>>uint(i))&1 == 1
		if err := c.emitBitOnClock(bit, timeout); err != nil {
			return err
		}
	}
	return c.Data.Release()
}

// driveAckOnClock (responder side) drives the ack bit (low = ack, released
// = nack) across one controller clock, then releases the data line —
// spec §4.6's "release on next clock low" — so control of the line passes
// back to the controller for the following byte, STOP, or repeated START.
func (c *BusConfig) driveAckOnClock(ack bool, timeout time.Duration) error {
	if err := c.emitBitOnClock(!ack, timeout); err != nil {
		return err
	}
	return c.Data.Release()
}

// sampleAckOnClock (responder side) samples the controller's ack/nack bit
// after a transmitted byte, reporting which busEvent (if any) preempted it.
func (c *BusConfig) sampleAckOnClock(timeout time.Duration) (ack bool, event busEvent, err error) {
	bit, ev, err := c.sampleBitOnClock(timeout)
	if err != nil {
		return false, evNone, err
	}
	if ev != evNone {
		return false, ev, nil
	}
	return !bit, evNone, nil
}
