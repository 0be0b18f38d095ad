// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Responder engine (spec §4.6): the address-matching protocol state
// machine. Responder.Run polls the bit layer in a single-threaded loop,
// ticking the register store whenever the bus is idle and driving it
// through one transaction at a time once a START is observed.
package i2cproto

import (
	"context"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Responder runs the protocol state machine of spec §4.6 against a
// RegisterStore. It is not safe for concurrent use.
type Responder struct {
	Cfg    *BusConfig
	Store  RegisterStore
	Events Events

	pointer       uint8
	pointerLoaded bool

	consecutiveFailures int
}

// NewResponder wraps cfg and store with the default no-op event sink.
func NewResponder(cfg *BusConfig, store RegisterStore) *Responder {
	return &Responder{Cfg: cfg, Store: store, Events: NopEvents{}}
}

// idlePollTimeout bounds how long each waitForStart attempt blocks before
// Run loops back around to tick the register store again; it is
// deliberately much shorter than ResponderTimeout.
func (r *Responder) idlePollTimeout() time.Duration {
	if t := r.Cfg.BitPeriod * 10; t < r.Cfg.ResponderTimeout {
		return t
	}
	return r.Cfg.ResponderTimeout
}

// Run services transactions until ctx is cancelled. On cancellation it
// finishes any bit already in flight (the blocking primitives below are
// not themselves interruptible mid-bit, matching the "finish the current
// bit" cancellation rule) and returns after releasing both lines.
func (r *Responder) Run(ctx context.Context) error {
	defer func() {
		_ = r.Cfg.Data.Release()
		_ = r.Cfg.Clock.Release()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		r.Store.Tick()
		if err := r.Cfg.waitForStart(r.idlePollTimeout()); err != nil {
			continue
		}
		r.pointerLoaded = false
		r.serveTransaction()
	}
}

// serveTransaction runs frames until a STOP (or an unrecoverable soft
// error) ends the logical transaction; a repeated START loops back into a
// fresh ADDR phase without returning to the caller.
func (r *Responder) serveTransaction() {
	for {
		again, err := r.serveFrame()
		if err != nil {
			r.softError(err)
			return
		}
		if !again {
			r.consecutiveFailures = 0
			r.Events.FrameReset()
			return
		}
		r.pointerLoaded = false
	}
}

// serveFrame runs ADDR through to the end of the current frame. It
// returns again=true if a repeated START was observed (the caller should
// start a new frame without re-confirming bus idle), again=false if the
// transaction ended cleanly (STOP, address mismatch, or a read terminated
// by the controller's nack). A START is detected while the clock is still
// high, so it first waits for the controller to pull the clock low;
// sampling before that would read the START's own data level as an
// extra address bit.
func (r *Responder) serveFrame() (again bool, err error) {
	if err := r.Cfg.waitWhile(gpio.High, r.Cfg.Clock.ReadLevel, r.Cfg.ResponderTimeout); err != nil {
		return false, err
	}
	addr, ev, err := r.Cfg.receiveByteOnClock(r.Cfg.ResponderTimeout)
	if err != nil {
		return false, err
	}
	if ev != evNone {
		return ev == evStart, nil
	}

	target := addr >> 1
	readDir := addr&1 == 1
	if target != r.Cfg.Address {
		return false, nil
	}
	if err := r.Cfg.driveAckOnClock(true, r.Cfg.ResponderTimeout); err != nil {
		return false, err
	}

	if readDir {
		return r.serveDataOut()
	}
	if !r.pointerLoaded {
		return r.serveRegisterLoad()
	}
	return r.serveDataIn()
}

// serveRegisterLoad handles the REG/REG_ACK states: the first data byte of
// a write transaction is always the register pointer, never store data.
func (r *Responder) serveRegisterLoad() (again bool, err error) {
	b, ev, err := r.Cfg.receiveByteOnClock(r.Cfg.ResponderTimeout)
	if err != nil {
		return false, err
	}
	if ev != evNone {
		return ev == evStart, nil
	}
	r.pointer = b
	r.pointerLoaded = true
	if err := r.Cfg.driveAckOnClock(true, r.Cfg.ResponderTimeout); err != nil {
		return false, err
	}
	return r.serveDataIn()
}

// serveDataIn handles DATA_IN/DATA_IN_ACK: every subsequent write byte is
// stored at the current pointer and the pointer auto-increments.
func (r *Responder) serveDataIn() (again bool, err error) {
	for {
		b, ev, err := r.Cfg.receiveByteOnClock(r.Cfg.ResponderTimeout)
		if err != nil {
			return false, err
		}
		if ev != evNone {
			return ev == evStart, nil
		}
		r.Store.WriteRegister(r.pointer, b)
		r.pointer++

		if err := r.Cfg.driveAckOnClock(true, r.Cfg.ResponderTimeout); err != nil {
			return false, err
		}
	}
}

// serveDataOut handles DATA_OUT/DATA_OUT_ACK: transmit the byte at the
// current pointer, advance it, and keep going until the controller nacks
// (expected end-of-read) or a START/STOP interrupts.
func (r *Responder) serveDataOut() (again bool, err error) {
	for {
		b := r.Store.ReadRegister(r.pointer)
		r.pointer++
		if err := r.Cfg.transmitByteOnClock(b, r.Cfg.ResponderTimeout); err != nil {
			return false, err
		}
		ack, ev, err := r.Cfg.sampleAckOnClock(r.Cfg.ResponderTimeout)
		if err != nil {
			return false, err
		}
		if ev != evNone {
			return ev == evStart, nil
		}
		if !ack {
			if err := r.Cfg.Data.Release(); err != nil {
				return false, err
			}
			return false, nil
		}
	}
}

// softError implements spec §7's "Timing fault (responder)": abort,
// release the data line, report the fault, and count it toward the
// extended-idle-pause threshold. A cleanly ended transaction resets the
// count (serveTransaction); once the pause has elapsed BusRecovered is
// reported.
func (r *Responder) softError(err error) {
	_ = r.Cfg.Data.Release()
	r.Events.SoftError(err)
	r.Events.FrameReset()
	r.consecutiveFailures++
	if r.consecutiveFailures >= r.Cfg.MaxConsecutiveFailures {
		r.consecutiveFailures = 0
		sleep(r.Cfg.BitPeriod * 10)
		r.Events.BusRecovered()
	}
}
