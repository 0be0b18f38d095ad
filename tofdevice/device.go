// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tofdevice

import (
	"time"

	"github.com/hw-sim/tofbus/i2cproto"
)

// ConversionLatency is the simulated delay between a start-measurement
// write and the data-ready state.
const ConversionLatency = 75 * time.Millisecond

type measurementState int

const (
	stateIdle measurementState = iota
	stateInProgress
	stateComplete
)

// Device is the passive register store plus timer described by spec §4.7.
// It implements i2cproto.RegisterStore; the responder engine is the only
// caller and never reaches past that interface.
type Device struct {
	regs  registerFile
	state measurementState
	start time.Time

	walker *distanceWalker
	now    func() time.Time
}

// New returns a device with all registers at their documented initial
// values. seed drives the simulated distance's random walk; callers
// typically pass time.Now().UnixNano().
func New(seed int64) *Device {
	return &Device{
		regs:   newRegisterFile(),
		walker: newDistanceWalker(seed),
		now:    time.Now,
	}
}

// ReadRegister returns the current value at index and applies the
// data-ready self-clear at 0x13.
func (d *Device) ReadRegister(index uint8) byte {
	v := d.regs[index]
	if index == regStatus && v == statusDataReady {
		d.regs[regStatus] = 0x00
		d.state = stateIdle
	}
	return v
}

// WriteRegister stores value at index and applies the start-measurement
// strobe at 0x00.
func (d *Device) WriteRegister(index uint8, value byte) {
	d.regs[index] = value
	if index == regStartStrobe && value&1 == 1 && d.state == stateIdle {
		d.state = stateInProgress
		d.start = d.now()
		d.regs[regStatus] = 0x00
	}
}

// Tick advances the measurement timer; called from the responder's idle
// poll so the conversion completes even without bus traffic.
func (d *Device) Tick() {
	if d.state != stateInProgress {
		return
	}
	if d.now().Sub(d.start) < ConversionLatency {
		return
	}
	d.state = stateComplete
	dist := d.walker.next()
	d.regs[regDistanceHi] = byte(dist >> 8)
	d.regs[regDistanceLo] = byte(dist)
	d.regs[regStatus] = statusDataReady
}

var _ i2cproto.RegisterStore = (*Device)(nil)
