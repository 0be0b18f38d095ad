// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Controller engine (spec §4.5): framed write and read transfers built on
// the byte layer, plus the bus-recovery sequence (spec §4.6 "Consecutive-
// failure trip") that ends a run of soft errors.
package i2cproto

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Controller drives measurement workflows against a responder over a
// BusConfig. It is not safe for concurrent use: the scheduling model is
// single-threaded cooperative (spec §5).
type Controller struct {
	Cfg    *BusConfig
	Events Events

	consecutiveFailures int
}

// NewController wraps cfg with the default no-op event sink.
func NewController(cfg *BusConfig) *Controller {
	return &Controller{Cfg: cfg, Events: NopEvents{}}
}

// Write performs Controller-write(target, bytes): START, address byte with
// the write direction bit, each byte of data in order, STOP.
func (ctl *Controller) Write(target uint8, data []byte) error {
	if err := ctl.Cfg.start(); err != nil {
		return ctl.fail("write", err)
	}
	ack, err := ctl.Cfg.transmitByte(addressByte(target, false))
	if err != nil {
		return ctl.fail("write", err)
	}
	if !ack {
		_ = ctl.Cfg.stop()
		return ctl.fail("write", ErrNoResponse)
	}
	for i, b := range data {
		ack, err := ctl.Cfg.transmitByte(b)
		if err != nil {
			_ = ctl.Cfg.stop()
			return ctl.fail("write", err)
		}
		if !ack {
			_ = ctl.Cfg.stop()
			return ctl.fail("write", &NackError{Index: i})
		}
	}
	if err := ctl.Cfg.stop(); err != nil {
		return ctl.fail("write", err)
	}
	ctl.ok("write", len(data))
	return nil
}

// Read performs Controller-read(target, n, into buffer): START, address
// byte with the read direction bit, n bytes acked except the last, STOP.
func (ctl *Controller) Read(target uint8, into []byte) error {
	if err := ctl.Cfg.start(); err != nil {
		return ctl.fail("read", err)
	}
	ack, err := ctl.Cfg.transmitByte(addressByte(target, true))
	if err != nil {
		return ctl.fail("read", err)
	}
	if !ack {
		_ = ctl.Cfg.stop()
		return ctl.fail("read", ErrNoResponse)
	}
	for i := range into {
		last := i == len(into)-1
		b, err := ctl.Cfg.receiveByte(!last)
		if err != nil {
			_ = ctl.Cfg.stop()
			return ctl.fail("read", err)
		}
		into[i] = b
	}
	if err := ctl.Cfg.stop(); err != nil {
		return ctl.fail("read", err)
	}
	ctl.ok("read", len(into))
	return nil
}

// WriteThenRead builds the composite "write-register-then-read-register"
// operation named in spec §4.5: a full write of the pointer byte, a
// configured gap, then a full read — no repeated START is issued.
func (ctl *Controller) WriteThenRead(target uint8, pointer byte, into []byte) error {
	if err := ctl.Write(target, []byte{pointer}); err != nil {
		return err
	}
	sleep(ctl.Cfg.WriteToReadGap)
	return ctl.Read(target, into)
}

func addressByte(target uint8, read bool) byte {
	b := target << 1
	if read {
		b |= 1
	}
	return b
}

func (ctl *Controller) ok(kind string, n int) {
	ctl.consecutiveFailures = 0
	ctl.Events.TransactionOK(kind, n)
}

func (ctl *Controller) fail(kind string, err error) error {
	ctl.consecutiveFailures++
	ctl.Events.TransactionFailed(kind, err)
	if ctl.consecutiveFailures >= ctl.Cfg.MaxConsecutiveFailures {
		ctl.consecutiveFailures = 0
		if rerr := ctl.recover(); rerr != nil {
			return fmt.Errorf("%w (recovery also failed: %w)", err, rerr)
		}
		ctl.Events.BusRecovered()
	}
	return err
}

// recover implements the bus-recovery sequence of spec §4.6: release both
// lines, pulse the clock low-high up to 9 times with data released, then
// emit a STOP.
func (ctl *Controller) recover() error {
	if err := ctl.Cfg.Data.Release(); err != nil {
		return err
	}
	if err := ctl.Cfg.Clock.Release(); err != nil {
		return err
	}
	for i := 0; i < 9; i++ {
		if ctl.Cfg.Data.ReadLevel() == gpio.High {
			break
		}
		if err := ctl.Cfg.Clock.DriveLow(); err != nil {
			return ErrBusRecoveryFailed
		}
		ctl.Cfg.sleepQuarter()
		ctl.Cfg.sleepQuarter()
		if err := ctl.Cfg.Clock.Release(); err != nil {
			return ErrBusRecoveryFailed
		}
		ctl.Cfg.sleepQuarter()
		ctl.Cfg.sleepQuarter()
	}
	return ctl.Cfg.stop()
}
