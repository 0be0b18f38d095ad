// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package linebus implements the open-drain Line Driver abstraction that
// the bit-banged I²C engine in package i2cproto is built on: a GPIO line has
// exactly two observable states, released (input, pulled high by an
// external resistor) or driven low, and nothing else. There is no
// "set high" operation — open-drain electrical discipline forbids it, so it
// isn't in the API.
package linebus

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Line wraps a single gpio.PinIO and restricts it to the two states an
// open-drain bus line may be in. It owns no goroutines and holds no buffer;
// every call is a direct, synchronous reconfiguration of the underlying pin.
type Line struct {
	pin  gpio.PinIO
	name string
}

// Wrap adapts any gpio.PinIO — a real chardev line, a fake pin in a test,
// or any other backend — into a Line.
func Wrap(p gpio.PinIO) *Line {
	return &Line{pin: p, name: p.Name()}
}

// Name returns the underlying pin's name, for diagnostics.
func (l *Line) Name() string {
	return l.name
}

// Release reconfigures the line as an input with a pull-up bias. A released
// line floats to logical 1 via the external pull-up; this is the only way
// this abstraction can produce a high level on the bus.
func (l *Line) Release() error {
	if err := l.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("linebus: release %s: %w", l.name, err)
	}
	return nil
}

// DriveLow reconfigures the line as an output and drives it to logical 0.
func (l *Line) DriveLow() error {
	if err := l.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("linebus: drive-low %s: %w", l.name, err)
	}
	return nil
}

// ReadLevel returns the observed logical level. It is valid to call this
// whether the line is currently released or driven low by this side; when
// driven low by this side it trivially reads back Low.
func (l *Line) ReadLevel() gpio.Level {
	return l.pin.Read()
}

// Set is a convenience used by the bit layer: true releases (logical 1),
// false drives low (logical 0).
func (l *Line) Set(high bool) error {
	if high {
		return l.Release()
	}
	return l.DriveLow()
}

// Pin exposes the underlying gpio.PinIO, for backends (such as the
// interrupt-driven responder) that need WaitForEdge directly.
func (l *Line) Pin() gpio.PinIO {
	return l.pin
}
