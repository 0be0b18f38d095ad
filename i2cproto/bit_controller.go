// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Controller-side bit layer (spec §4.2): the controller drives the clock,
// so every wait here is a fixed sleep of one quarter bit period rather than
// a poll on an observed edge. Grounded on the start()/writeByte()/
// readByte() shape of the bitbang I²C controller retrieved alongside this
// module's teacher, corrected for the ACK-signal bug that code's own
// comment flags and rewritten against linebus.Line.
package i2cproto

import (
	"periph.io/x/conn/v3/gpio"
)

func (c *BusConfig) sleepQuarter() {
	sleep(c.quarter())
}

// emitBit drives one data bit across one clock pulse. Precondition: the
// clock line is already asserted low (true on entry to a byte and after
// every prior bit).
func (c *BusConfig) emitBit(high bool) error {
	if err := c.Data.Set(high); err != nil {
		return err
	}
	c.sleepQuarter()
	if err := c.Clock.Release(); err != nil {
		return err
	}
	c.sleepQuarter()
	c.sleepQuarter()
	if err := c.Clock.DriveLow(); err != nil {
		return err
	}
	c.sleepQuarter()
	return nil
}

// sampleBit reads one data bit across one clock pulse; same precondition
// and postcondition as emitBit, but releases the data line instead of
// driving it so the other party may drive it.
func (c *BusConfig) sampleBit() (bool, error) {
	if err := c.Data.Release(); err != nil {
		return false, err
	}
	c.sleepQuarter()
	if err := c.Clock.Release(); err != nil {
		return false, err
	}
	c.sleepQuarter()
	level := c.Data.ReadLevel() == gpio.High
	c.sleepQuarter()
	if err := c.Clock.DriveLow(); err != nil {
		return false, err
	}
	c.sleepQuarter()
	return level, nil
}

// start emits a START condition. Controller.Write and Controller.Read call
// it at the beginning of every transfer, always after a STOP. It first
// releases both lines and holds the bus idle for one quarter, so the
// responder can observe the idle state it requires before a START, even
// when this transfer follows the previous one's STOP immediately.
func (c *BusConfig) start() error {
	if err := c.Clock.Release(); err != nil {
		return err
	}
	if err := c.Data.Release(); err != nil {
		return err
	}
	c.sleepQuarter()
	if err := c.Data.DriveLow(); err != nil {
		return err
	}
	c.sleepQuarter()
	if err := c.Clock.DriveLow(); err != nil {
		return err
	}
	return nil
}

// stop emits a STOP condition. The controller is the only party that ever
// calls stop, so it explicitly (re-)asserts data low first rather than
// trusting whatever the last sampled ack bit happened to leave on the bus.
func (c *BusConfig) stop() error {
	if err := c.Data.DriveLow(); err != nil {
		return err
	}
	if err := c.Clock.Release(); err != nil {
		return err
	}
	c.sleepQuarter()
	if err := c.Data.Release(); err != nil {
		return err
	}
	return nil
}
