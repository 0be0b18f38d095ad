// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package wiretest provides a fake open-drain wire shared by two
// independent gpio.PinIO handles, one per side of a simulated I²C bus. It
// lets i2cproto's tests drive a controller and a responder concurrently
// without a real GPIO chip, the same way google-periph's
// conn/gpio/gpiotest.Pin fakes a single pin — except here two handles must
// agree on one wired-AND level instead of one handle owning all the state.
package wiretest

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// net is one physical line: logical 1 unless at least one side asserts low.
type net struct {
	mu  sync.Mutex
	low [2]bool
}

func (n *net) assert(side int, low bool) {
	n.mu.Lock()
	n.low[side] = low
	n.mu.Unlock()
}

func (n *net) level() gpio.Level {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.low[0] || n.low[1] {
		return gpio.Low
	}
	return gpio.High
}

// Bus is a pair of nets (data, clock) and the two sides' pin handles.
type Bus struct {
	data, clock net
}

// NewBus returns a fresh idle bus (both lines released/high).
func NewBus() *Bus {
	return &Bus{}
}

// Side returns the two pins (data, clock) as seen by one side of the bus.
// side 0 and side 1 must be used by the two different simulated peers.
func (b *Bus) Side(side int) (data, clock gpio.PinIO) {
	return &pinHandle{net: &b.data, side: side, name: "DATA"},
		&pinHandle{net: &b.clock, side: side, name: "CLK"}
}

// pinHandle implements gpio.PinIO against one side of a shared net.
type pinHandle struct {
	net  *net
	side int
	name string

	mu   sync.Mutex
	out  bool // true once this side has driven Out() at least once
	pull gpio.Pull
}

func (p *pinHandle) String() string   { return p.name }
func (p *pinHandle) Halt() error      { return nil }
func (p *pinHandle) Name() string     { return p.name }
func (p *pinHandle) Number() int      { return p.side }
func (p *pinHandle) Function() string { return "" }

func (p *pinHandle) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	p.pull = pull
	p.out = false
	p.mu.Unlock()
	p.net.assert(p.side, false)
	return nil
}

func (p *pinHandle) Out(l gpio.Level) error {
	p.mu.Lock()
	p.out = true
	p.mu.Unlock()
	p.net.assert(p.side, l == gpio.Low)
	return nil
}

func (p *pinHandle) Read() gpio.Level {
	return p.net.level()
}

func (p *pinHandle) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

func (p *pinHandle) Pull() gpio.Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

func (p *pinHandle) PWM(gpio.Duty, physic.Frequency) error {
	return nil
}

// WaitForEdge polls for a level change. It is an approximation of a real
// edge IRQ, good enough to exercise the interrupt-driven responder in
// tests: it returns true as soon as the level differs from the level
// observed when the call started, or false if timeout elapses first.
func (p *pinHandle) WaitForEdge(timeout time.Duration) bool {
	start := p.net.level()
	deadline := time.Now().Add(timeout)
	for timeout <= 0 || time.Now().Before(deadline) {
		if p.net.level() != start {
			return true
		}
		time.Sleep(time.Microsecond * 10)
	}
	return false
}

var (
	_ gpio.PinIO  = (*pinHandle)(nil)
	_ pin.Pin     = (*pinHandle)(nil)
	_ gpio.PinIn  = (*pinHandle)(nil)
	_ gpio.PinOut = (*pinHandle)(nil)
)
