// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"log"

	"github.com/hw-sim/tofbus/i2cproto"
)

// stats is the surrounding glue spec.md §1 calls out as external to the
// core: it implements i2cproto.Events purely to log, with no effect on
// protocol behavior.
type stats struct {
	ok, failed, recoveries int
}

func (s *stats) TransactionOK(kind string, bytes int) {
	s.ok++
}

func (s *stats) TransactionFailed(kind string, err error) {
	s.failed++
	log.Printf("tof-controller: %s transaction failed: %v", kind, err)
}

func (s *stats) SoftError(err error) {}

func (s *stats) BusRecovered() {
	s.recoveries++
	log.Printf("tof-controller: bus recovery #%d", s.recoveries)
}

func (s *stats) FrameReset() {}

var _ i2cproto.Events = (*stats)(nil)
