// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command tof-responder emulates the time-of-flight ranging device over
// two GPIO lines, answering a tof-controller peer's polled busy-wait loop
// (package i2cproto's Responder). See tof-responder-irq for the
// interrupt-driven reference variant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hw-sim/tofbus/i2cproto"
	"github.com/hw-sim/tofbus/linebus"
	"github.com/hw-sim/tofbus/tofdevice"
)

func main() {
	if err := mainImpl(); err != nil {
		log.Printf("tof-responder: %v", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	chipPath := flag.String("chip", "/dev/gpiochip0", "GPIO chip device path")
	dataLine := flag.Int("data-line", 0, "data GPIO line offset")
	clockLine := flag.Int("clock-line", 0, "clock GPIO line offset")
	address := flag.Int("responder-address", 0x29, "7-bit responder address")
	bitPeriodUs := flag.Int("bit-period-us", 2000, "quarter-clock-phase duration in microseconds")
	maxConsecutiveFailures := flag.Int("max-consecutive-failures", 2, "soft-error threshold before an extended idle pause")
	flag.Parse()

	chip, err := linebus.OpenChip(*chipPath)
	if err != nil {
		return fmt.Errorf("open chip: %w", err)
	}
	defer chip.Close()

	dataL, err := chip.RequestLine(*dataLine)
	if err != nil {
		return fmt.Errorf("request data line: %w", err)
	}
	clockL, err := chip.RequestLine(*clockLine)
	if err != nil {
		return fmt.Errorf("request clock line: %w", err)
	}

	cfg := i2cproto.DefaultBusConfig(dataL, clockL)
	cfg.Address = uint8(*address)
	cfg.BitPeriod = time.Duration(*bitPeriodUs) * time.Microsecond
	cfg.MaxConsecutiveFailures = *maxConsecutiveFailures
	cfg.ResponderTimeout = cfg.BitPeriod * 50
	defer cfg.Close()

	dev := tofdevice.New(time.Now().UnixNano())
	resp := i2cproto.NewResponder(cfg, dev)
	resp.Events = loggingEvents{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("tof-responder: listening as address 0x%02x on %s (data=%d clock=%d)", cfg.Address, *chipPath, *dataLine, *clockLine)
	return resp.Run(ctx)
}

type loggingEvents struct{ i2cproto.NopEvents }

func (loggingEvents) SoftError(err error) {
	log.Printf("tof-responder: soft error: %v", err)
}

func (loggingEvents) BusRecovered() {
	log.Printf("tof-responder: resumed after extended idle pause")
}

var _ i2cproto.Events = loggingEvents{}
