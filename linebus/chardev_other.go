// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package linebus

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// simChip stands in for a real GPIO chip on platforms without the Linux
// GPIO v2 chardev, so linebus.OpenChip and everything built on it can be
// developed and smoke-tested off real hardware. Each resolved line is an
// independent, single-sided open-drain stand-in: released reads back
// High, driven reads back whatever was last driven. It has no peer, so it
// is only useful for exercising the OpenChip/RequestLine plumbing, not the
// two-sided protocol itself — i2cproto's own tests use wiretest for that.
type simChip struct {
	path string
}

func openChardevChip(path string) (chipBackend, error) {
	return &simChip{path: path}, nil
}

func (c *simChip) line(offset int) (gpio.PinIO, error) {
	return &simLine{name: fmt.Sprintf("%s-%d", c.path, offset), offset: offset, level: gpio.High}, nil
}

func (c *simChip) close() error { return nil }

type simLine struct {
	mu     sync.Mutex
	name   string
	offset int
	level  gpio.Level
}

func (l *simLine) String() string         { return l.name }
func (l *simLine) Halt() error            { return nil }
func (l *simLine) Name() string           { return l.name }
func (l *simLine) Number() int            { return l.offset }
func (l *simLine) Function() string       { return "" }
func (l *simLine) DefaultPull() gpio.Pull { return gpio.PullUp }

func (l *simLine) PWM(gpio.Duty, physic.Frequency) error {
	return fmt.Errorf("linebus: PWM not supported on a bit-banged bus line")
}

func (l *simLine) In(pull gpio.Pull, edge gpio.Edge) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = gpio.High
	return nil
}

func (l *simLine) Out(level gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	return nil
}

func (l *simLine) Read() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Pull reports PullNoChange: the stand-in does not track a bias.
func (l *simLine) Pull() gpio.Pull { return gpio.PullNoChange }

// WaitForEdge has nothing to wait on since the line has no peer; it simply
// blocks out the timeout and reports no edge observed.
func (l *simLine) WaitForEdge(timeout time.Duration) bool {
	time.Sleep(timeout)
	return false
}

var _ gpio.PinIO = (*simLine)(nil)
