// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tofdevice

import (
	"testing"
	"time"
)

func TestIdentityRegisters(t *testing.T) {
	d := New(1)
	if v := d.ReadRegister(regModelID); v != modelID {
		t.Fatalf("model id = 0x%02x, want 0x%02x", v, modelID)
	}
	if v := d.ReadRegister(regRevisionID); v != revisionID {
		t.Fatalf("revision id = 0x%02x, want 0x%02x", v, revisionID)
	}
}

func TestScratchRegisterPersists(t *testing.T) {
	d := New(1)
	d.WriteRegister(0x42, 0xA5)
	if v := d.ReadRegister(0x42); v != 0xA5 {
		t.Fatalf("scratch register = 0x%02x, want 0xA5", v)
	}
}

func TestMeasurementCycle(t *testing.T) {
	d := New(1)
	now := time.Now()
	d.now = func() time.Time { return now }

	d.WriteRegister(regStartStrobe, 0x01)
	if v := d.ReadRegister(regStatus); v != 0x00 {
		t.Fatalf("status before conversion latency = 0x%02x, want 0x00", v)
	}

	now = now.Add(ConversionLatency)
	d.Tick()

	if v := d.ReadRegister(regStatus); v != statusDataReady {
		t.Fatalf("status after conversion latency = 0x%02x, want 0x%02x", v, statusDataReady)
	}
	if v := d.ReadRegister(regStatus); v != 0x00 {
		t.Fatalf("status did not self-clear on second read: 0x%02x", v)
	}

	dist := uint16(d.regs[regDistanceHi])<<8 | uint16(d.regs[regDistanceLo])
	if dist < distanceMin || dist > distanceMax {
		t.Fatalf("distance %d outside [%d, %d]", dist, distanceMin, distanceMax)
	}
}

func TestStartStrobeIgnoredWhileInProgress(t *testing.T) {
	d := New(1)
	now := time.Now()
	d.now = func() time.Time { return now }

	d.WriteRegister(regStartStrobe, 0x01)
	firstStart := d.state
	d.WriteRegister(regStartStrobe, 0x01)
	if d.state != firstStart || d.state != stateInProgress {
		t.Fatalf("second start strobe while in progress changed state to %v", d.state)
	}
}

func TestDistanceWalkerStaysInBounds(t *testing.T) {
	w := newDistanceWalker(42)
	for i := 0; i < 1000; i++ {
		d := w.next()
		if d < distanceMin || d > distanceMax {
			t.Fatalf("distance %d outside [%d, %d] on iteration %d", d, distanceMin, distanceMax, i)
		}
	}
}
