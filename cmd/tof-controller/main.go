// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command tof-controller drives the measurement workflow against a
// tof-responder (or tof-responder-irq) peer sharing two GPIO lines: start
// a conversion, poll for data-ready, read back the distance, repeat.
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
)

func main() {
	if err := mainImpl(); err != nil {
		log.Printf("tof-controller: %v", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	chipPath := flag.String("chip", "/dev/gpiochip0", "GPIO chip device path")
	dataLine := flag.Int("data-line", 0, "data GPIO line offset")
	clockLine := flag.Int("clock-line", 0, "clock GPIO line offset")
	address := flag.Int("responder-address", 0x29, "7-bit responder address")
	bitPeriodUs := flag.Int("bit-period-us", 2000, "quarter-clock-phase duration in microseconds")
	freqHz := flag.Float64("measurement-frequency-hz", 5, "measurement cycles per second")
	maxMeasurements := flag.Int("max-measurements", 500, "total measurement cycles before exit")
	writeToReadGapUs := flag.Int("write-to-read-gap-us", 0, "delay between a register-pointer write and the following read; 0 picks period/20")
	maxConsecutiveFailures := flag.Int("max-consecutive-failures", 2, "soft-error threshold before bus recovery")
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
	if *writeToReadGapUs > 0 {
		cfg.WriteToReadGap = time.Duration(*writeToReadGapUs) * time.Microsecond
	} else {
		cfg.WriteToReadGap = cfg.BitPeriod / 20
	}
	defer cfg.Close()

	stats := &stats{}
	ctl := i2cproto.NewController(cfg)
	ctl.Events = stats

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readout := newLiveReadout()
	defer readout.done()

	period := time.Duration(float64(time.Second) / (*freqHz))
	for cycle := 0; *maxMeasurements <= 0 || cycle < *maxMeasurements; cycle++ {
		select {
		case <-ctx.Done():
			log.Printf("tof-controller: shutting down after %d cycles", cycle)
			return nil
		default:
		}

		dist, err := runCycle(ctx, ctl, cfg.Address)
		if err != nil {
			log.Printf("tof-controller: cycle %d failed: %v", cycle, err)
			continue
		}
		readout.show(cycle, dist)

		select {
		case <-ctx.Done():
			log.Printf("tof-controller: shutting down after %d cycles", cycle+1)
			return nil
		case <-time.After(period):
		}
	}
	log.Printf("tof-controller: measurement budget of %d reached", *maxMeasurements)
	return nil
}

// runCycle implements scenario S2: strobe a measurement, poll register
// 0x13 until data-ready, then read the big-endian distance at 0x1E/0x1F.
func runCycle(ctx context.Context, ctl *i2cproto.Controller, target uint8) (uint16, error) {
	if err := ctl.Write(target, []byte{0x00, 0x01}); err != nil {
		return 0, fmt.Errorf("start measurement: %w", err)
	}

	var status [1]byte
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		if err := ctl.WriteThenRead(target, 0x13, status[:]); err != nil {
			return 0, fmt.Errorf("poll status: %w", err)
		}
		if status[0] == 0x07 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var distance [2]byte
	if err := ctl.WriteThenRead(target, 0x1E, distance[:]); err != nil {
		return 0, fmt.Errorf("read distance: %w", err)
	}
	return uint16(distance[0])<<8 | uint16(distance[1]), nil
}
