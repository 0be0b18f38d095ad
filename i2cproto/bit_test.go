// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto

import (
	"testing"
	"time"

	"github.com/hw-sim/tofbus/i2cproto/wiretest"
	"github.com/hw-sim/tofbus/linebus"
)

func twoSidedConfigs(period time.Duration) (ctl, resp *BusConfig) {
	bus := wiretest.NewBus()
	cData, cClock := bus.Side(0)
	rData, rClock := bus.Side(1)
	ctl = DefaultBusConfig(linebus.Wrap(cData), linebus.Wrap(cClock))
	ctl.BitPeriod = period
	resp = DefaultBusConfig(linebus.Wrap(rData), linebus.Wrap(rClock))
	resp.BitPeriod = period
	resp.ResponderTimeout = period * 50
	return ctl, resp
}

func TestBitRoundTrip(t *testing.T) {
	ctl, resp := twoSidedConfigs(200 * time.Microsecond)
	if err := ctl.Clock.Release(); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Data.Release(); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Clock.DriveLow(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []bool{true, false, true, true, false} {
		done := make(chan bool, 1)
		go func() {
			got, _, err := resp.sampleBitOnClock(resp.ResponderTimeout)
			if err != nil {
				t.Error(err)
			}
			done <- got
		}()
		if err := ctl.emitBit(want); err != nil {
			t.Fatal(err)
		}
		if got := <-done; got != want {
			t.Fatalf("sampled bit = %v, want %v", got, want)
		}
	}
}

func TestStartStopDetection(t *testing.T) {
	ctl, resp := twoSidedConfigs(200 * time.Microsecond)
	if err := ctl.Clock.Release(); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Data.Release(); err != nil {
		t.Fatal(err)
	}

	startSeen := make(chan error, 1)
	go func() { startSeen <- resp.waitForStart(resp.ResponderTimeout) }()
	if err := ctl.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := <-startSeen; err != nil {
		t.Fatalf("waitForStart: %v", err)
	}

	if err := ctl.Clock.DriveLow(); err != nil {
		t.Fatal(err)
	}
	evSeen := make(chan busEvent, 1)
	go func() {
		_, ev, err := resp.sampleBitOnClock(resp.ResponderTimeout)
		if err != nil {
			t.Error(err)
		}
		evSeen <- ev
	}()
	if err := ctl.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ev := <-evSeen; ev != evStop {
		t.Fatalf("event = %v, want evStop", ev)
	}
}
