// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package linebus

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestLineFlagsDirectionAndBias(t *testing.T) {
	tests := []struct {
		name string
		dir  lineDirection
		pull gpio.Pull
		edge gpio.Edge
		want uint64
	}{
		{"input pull-up", dirInput, gpio.PullUp, gpio.NoEdge, flagInput | flagBiasPullUp},
		{"input pull-down", dirInput, gpio.PullDown, gpio.NoEdge, flagInput | flagBiasPullDown},
		{"output no bias", dirOutput, gpio.PullNoChange, gpio.NoEdge, flagOutput},
		{"input rising edge", dirInput, gpio.PullUp, gpio.RisingEdge, flagInput | flagBiasPullUp | flagEdgeRising},
		{"input both edges", dirInput, gpio.PullUp, gpio.BothEdges, flagInput | flagBiasPullUp | flagEdgeRising | flagEdgeFalling},
	}
	for _, tt := range tests {
		if got := lineFlags(tt.dir, tt.pull, tt.edge); got != tt.want {
			t.Errorf("%s: lineFlags() = %#x, want %#x", tt.name, got, tt.want)
		}
	}
}

func TestConsumerLabelFitsKernelField(t *testing.T) {
	b := consumerLabel()
	if len(b) >= maxNameSize {
		t.Fatalf("consumer label length = %d, want < %d", len(b), maxNameSize)
	}
	if len(b) == 0 {
		t.Fatal("consumer label is empty")
	}
}

func TestIoctlCodeLayout(t *testing.T) {
	// GPIO_GET_CHIPINFO_IOCTL is a well-known fixed value from the kernel
	// ABI; recomputing it here catches a mistake in the _IOC encoding
	// before it ever touches a real chardev.
	const wantChipInfo = 0x8044b401
	if got := iocR(0x01, 68); got != wantChipInfo {
		t.Errorf("iocR(chip info) = %#x, want %#x", got, wantChipInfo)
	}
}
