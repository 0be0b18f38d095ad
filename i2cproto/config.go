// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cproto implements a software I²C link bit-banged over two
// open-drain GPIO lines (package linebus): the bit layer, the byte layer,
// a controller engine (framed write/read transfers) and a responder engine
// (an address-matching protocol state machine). None of it depends on a
// real GPIO chip — it is built entirely against linebus.Line, which is
// itself a thin wrapper over periph.io/x/conn/v3/gpio.PinIO.
package i2cproto

import (
	"time"

	"github.com/hw-sim/tofbus/linebus"
)

// BusConfig is the Bus configuration: the two line handles plus the
// parameters that govern timing and addressing. It is read-only once
// constructed; Close releases both lines.
type BusConfig struct {
	Data  *linebus.Line
	Clock *linebus.Line

	// BitPeriod is the nominal duration of one clock quarter-phase.
	BitPeriod time.Duration

	// Address is the responder's 7-bit address.
	Address uint8

	// WriteToReadGap is inserted by the controller engine between a
	// register-pointer write and the following read.
	WriteToReadGap time.Duration

	// MaxConsecutiveFailures is the soft-error threshold that triggers bus
	// recovery.
	MaxConsecutiveFailures int

	// ResponderTimeout bounds every clock-edge wait performed by the
	// responder engine, expressed directly as a duration (computed by the
	// caller as a small multiple of BitPeriod; 10-100 bit periods is the
	// spec's recommended range).
	ResponderTimeout time.Duration
}

// DefaultBusConfig wraps the caller's Data and Clock lines and fills in the
// documented defaults for every other field, including Address (0x29).
func DefaultBusConfig(data, clock *linebus.Line) *BusConfig {
	period := 2000 * time.Microsecond
	return &BusConfig{
		Data:                   data,
		Clock:                  clock,
		BitPeriod:              period,
		Address:                0x29,
		WriteToReadGap:         period / 20,
		MaxConsecutiveFailures: 2,
		ResponderTimeout:       period * 50,
	}
}

// Close releases both lines (input, pulled high), matching the Bus
// configuration's ownership of its two line handles described in the
// data model. It does not close the underlying chip file descriptor —
// that is the caller's (linebus.Chip's) responsibility.
func (c *BusConfig) Close() error {
	errData := c.Data.Release()
	errClock := c.Clock.Release()
	if errData != nil {
		return errData
	}
	return errClock
}

func (c *BusConfig) quarter() time.Duration {
	return c.BitPeriod
}
