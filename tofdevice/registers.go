// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tofdevice emulates the time-of-flight ranging device (model
// 0xEE, revision 0x10) behind the responder engine: a 256-byte register
// file, a measurement state machine driven by a simulated conversion
// latency, and a bounded random-walk distance reading.
package tofdevice

// Register indices from the wire-visible contract.
const (
	regStartStrobe = 0x00
	regStatus      = 0x13
	regRangeStatus = 0x14
	regDistanceHi  = 0x1E
	regDistanceLo  = 0x1F
	regModelID     = 0xC0
	regRevisionID  = 0xC2

	statusDataReady = 0x07
	modelID         = 0xEE
	revisionID      = 0x10
)

type registerFile [256]byte

func newRegisterFile() registerFile {
	var f registerFile
	f[regModelID] = modelID
	f[regRevisionID] = revisionID
	return f
}
