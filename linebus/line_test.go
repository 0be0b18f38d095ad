// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package linebus_test

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/hw-sim/tofbus/linebus"
)

// recordingPin is a minimal gpio.PinIO fake recording only what Line needs.
type recordingPin struct {
	level gpio.Level
	in    bool
	pull  gpio.Pull
}

func (p *recordingPin) String() string   { return "FAKE" }
func (p *recordingPin) Halt() error      { return nil }
func (p *recordingPin) Name() string     { return "FAKE" }
func (p *recordingPin) Number() int      { return 0 }
func (p *recordingPin) Function() string { return "" }

func (p *recordingPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.in = true
	p.pull = pull
	p.level = gpio.High
	return nil
}

func (p *recordingPin) Out(l gpio.Level) error {
	p.in = false
	p.level = l
	return nil
}

func (p *recordingPin) Read() gpio.Level                     { return p.level }
func (p *recordingPin) Pull() gpio.Pull                       { return p.pull }
func (p *recordingPin) DefaultPull() gpio.Pull                { return gpio.PullUp }
func (p *recordingPin) PWM(gpio.Duty, physic.Frequency) error { return nil }
func (p *recordingPin) WaitForEdge(time.Duration) bool        { return false }

var _ gpio.PinIO = (*recordingPin)(nil)

func TestLineReleaseAndDriveLow(t *testing.T) {
	fake := &recordingPin{}
	l := linebus.Wrap(fake)

	if err := l.DriveLow(); err != nil {
		t.Fatalf("DriveLow: %v", err)
	}
	if l.ReadLevel() != gpio.Low {
		t.Fatalf("level after DriveLow = %v, want Low", l.ReadLevel())
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if l.ReadLevel() != gpio.High {
		t.Fatalf("level after Release = %v, want High", l.ReadLevel())
	}
	if !fake.in || fake.pull != gpio.PullUp {
		t.Fatalf("Release did not configure input with pull-up: in=%v pull=%v", fake.in, fake.pull)
	}
}

func TestLineSet(t *testing.T) {
	fake := &recordingPin{}
	l := linebus.Wrap(fake)

	if err := l.Set(false); err != nil {
		t.Fatalf("Set(false): %v", err)
	}
	if l.ReadLevel() != gpio.Low {
		t.Fatalf("level after Set(false) = %v, want Low", l.ReadLevel())
	}

	if err := l.Set(true); err != nil {
		t.Fatalf("Set(true): %v", err)
	}
	if l.ReadLevel() != gpio.High {
		t.Fatalf("level after Set(true) = %v, want High", l.ReadLevel())
	}
}
