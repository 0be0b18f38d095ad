// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto_test

import (
	"context"
	"testing"
	"time"

	"github.com/hw-sim/tofbus/i2cproto"
	"github.com/hw-sim/tofbus/i2cproto/wiretest"
	"github.com/hw-sim/tofbus/linebus"
)

const testAddress = 0x29

// fakeStore is a minimal i2cproto.RegisterStore used to drive the bus
// layer's own tests without pulling in package tofdevice.
type fakeStore struct {
	regs [256]byte
}

func (f *fakeStore) ReadRegister(index uint8) byte        { return f.regs[index] }
func (f *fakeStore) WriteRegister(index uint8, value byte) { f.regs[index] = value }
func (f *fakeStore) Tick()                                 {}

var _ i2cproto.RegisterStore = (*fakeStore)(nil)

// harness wires a Controller and a Responder across a shared wiretest.Bus
// and runs the responder loop in the background for the duration of a test.
type harness struct {
	ctl   *i2cproto.Controller
	store *fakeStore
	stop  context.CancelFunc
	done  chan struct{}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bus := wiretest.NewBus()
	cData, cClock := bus.Side(0)
	rData, rClock := bus.Side(1)

	period := 200 * time.Microsecond
	ctlCfg := i2cproto.DefaultBusConfig(linebus.Wrap(cData), linebus.Wrap(cClock))
	ctlCfg.Address = testAddress
	ctlCfg.BitPeriod = period
	ctlCfg.WriteToReadGap = period

	respCfg := i2cproto.DefaultBusConfig(linebus.Wrap(rData), linebus.Wrap(rClock))
	respCfg.Address = testAddress
	respCfg.BitPeriod = period
	respCfg.ResponderTimeout = period * 50

	store := &fakeStore{}
	store.regs[0xC0] = 0xEE
	store.regs[0xC2] = 0x10

	resp := i2cproto.NewResponder(respCfg, store)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = resp.Run(ctx)
	}()

	h := &harness{ctl: i2cproto.NewController(ctlCfg), store: store, stop: cancel, done: done}
	t.Cleanup(func() {
		h.stop()
		<-h.done
	})
	return h
}

func TestIdentification(t *testing.T) {
	h := newHarness(t)
	var got [1]byte

	if err := h.ctl.WriteThenRead(testAddress, 0xC0, got[:]); err != nil {
		t.Fatalf("read model id: %v", err)
	}
	if got[0] != 0xEE {
		t.Fatalf("model id = 0x%02x, want 0xEE", got[0])
	}

	if err := h.ctl.WriteThenRead(testAddress, 0xC2, got[:]); err != nil {
		t.Fatalf("read revision id: %v", err)
	}
	if got[0] != 0x10 {
		t.Fatalf("revision id = 0x%02x, want 0x10", got[0])
	}
}

func TestScratchRegisterRoundTrip(t *testing.T) {
	h := newHarness(t)
	if err := h.ctl.Write(testAddress, []byte{0x42, 0xA5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got [1]byte
	if err := h.ctl.WriteThenRead(testAddress, 0x42, got[:]); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got[0] != 0xA5 {
		t.Fatalf("scratch register = 0x%02x, want 0xA5", got[0])
	}
}

func TestWrongAddressThenGoodAddress(t *testing.T) {
	h := newHarness(t)
	err := h.ctl.Write(0x2A, []byte{0xC0})
	if err == nil {
		t.Fatalf("write to unconfigured address unexpectedly succeeded")
	}

	var got [1]byte
	if err := h.ctl.WriteThenRead(testAddress, 0xC0, got[:]); err != nil {
		t.Fatalf("subsequent transaction to configured address failed: %v", err)
	}
	if got[0] != 0xEE {
		t.Fatalf("model id = 0x%02x, want 0xEE", got[0])
	}
}

func TestMultiByteReadAutoIncrement(t *testing.T) {
	h := newHarness(t)
	got := make([]byte, 3)
	if err := h.ctl.WriteThenRead(testAddress, 0xC0, got); err != nil {
		t.Fatalf("multi-byte read: %v", err)
	}
	want := []byte{0xEE, 0x00, 0x10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestPointerAutoIncrementOnWrite(t *testing.T) {
	h := newHarness(t)
	if err := h.ctl.Write(testAddress, []byte{0x10, 0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if h.store.regs[0x10] != 0x01 || h.store.regs[0x11] != 0x02 || h.store.regs[0x12] != 0x03 {
		t.Fatalf("unexpected register contents: %#v", h.store.regs[0x10:0x13])
	}
}
