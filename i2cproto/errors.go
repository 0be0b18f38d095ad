// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the controller engine (spec §7 "Transaction error")
// and the responder engine (spec §7 "Timing fault"). Callers discriminate
// with errors.Is; NackError additionally carries the byte position.
var (
	// ErrNoResponse is returned when the address byte itself is nacked.
	ErrNoResponse = errors.New("i2cproto: no response to address byte")

	// ErrNack is the sentinel wrapped by NackError.
	ErrNack = errors.New("i2cproto: nack")

	// ErrTimeout is returned by a responder-side bounded wait that expired.
	ErrTimeout = errors.New("i2cproto: clock-edge wait timed out")

	// ErrBusRecoveryFailed is returned when a clock pulse of the
	// controller's recovery sequence could not be driven; Write and Read
	// wrap it together with the failed transfer's own error.
	ErrBusRecoveryFailed = errors.New("i2cproto: bus recovery failed")
)

// NackError reports which data byte (0-indexed, after the address byte)
// was nacked by the responder.
type NackError struct {
	Index int
}

func (e *NackError) Error() string {
	return fmt.Sprintf("i2cproto: nack at byte index %d", e.Index)
}

func (e *NackError) Unwrap() error {
	return ErrNack
}
