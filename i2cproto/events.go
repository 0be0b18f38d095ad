// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto

// Events is the small event interface spec.md §1 says the core emits,
// letting cmd/ programs attach logging and statistics without the engines
// themselves depending on a logger. The engines call Responder.Events and
// Controller.Events unconditionally, so neither may be nil; NewResponder
// and NewController install NopEvents{} for callers that don't care.
type Events interface {
	// TransactionOK is called once per successful controller transfer.
	TransactionOK(kind string, bytes int)
	// TransactionFailed is called when a controller transfer fails.
	TransactionFailed(kind string, err error)
	// SoftError is called on a responder timing fault (spec §7).
	SoftError(err error)
	// BusRecovered is called after a recovery sequence completes.
	BusRecovered()
	// FrameReset is called whenever the responder's frame state returns to
	// IDLE, whether from a clean STOP or an aborted transaction.
	FrameReset()
}

// NopEvents implements Events with no-ops.
type NopEvents struct{}

func (NopEvents) TransactionOK(string, int)       {}
func (NopEvents) TransactionFailed(string, error) {}
func (NopEvents) SoftError(error)                 {}
func (NopEvents) BusRecovered()                   {}
func (NopEvents) FrameReset()                     {}

var _ Events = NopEvents{}
