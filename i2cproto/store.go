// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto

// RegisterStore is what the responder engine drives on every DATA_IN/
// DATA_OUT transition (spec §4.6, §4.7). Package tofdevice implements it;
// i2cproto never reaches into register contents itself — the engine only
// knows how to route bytes to and from whatever index the pointer names.
type RegisterStore interface {
	// ReadRegister returns the current value at index and applies any
	// read-side effect (e.g. the data-ready self-clear at 0x13).
	ReadRegister(index uint8) byte
	// WriteRegister stores value at index and applies any write-side
	// effect (e.g. the start-measurement strobe at 0x00).
	WriteRegister(index uint8, value byte)
	// Tick is called from the responder's idle poll so background state
	// (the simulated conversion timer) advances even without bus traffic.
	Tick()
}
