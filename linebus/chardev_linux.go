// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package linebus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// chardevChip is the Linux GPIO v2 chardev backend: one open
// /dev/gpiochipN file descriptor, with lines resolved and (re)requested on
// demand rather than enumerated up front — a bus only ever needs the two
// offsets it's told about.
type chardevChip struct {
	path string
	file *os.File
}

func openChardevChip(path string) (chipBackend, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("linebus: open %s: %w", path, err)
	}
	var info chipInfo
	if err := ioctlChipInfo(f.Fd(), &info); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("linebus: chip info %s: %w", path, err)
	}
	return &chardevChip{path: path, file: f}, nil
}

func (c *chardevChip) line(offset int) (gpio.PinIO, error) {
	var info lineInfo
	info.offset = uint32(offset)
	if err := ioctlLineInfo(c.file.Fd(), &info); err != nil {
		return nil, fmt.Errorf("linebus: line info offset %d on %s: %w", offset, c.path, err)
	}
	name := strings.TrimRight(string(info.name[:]), "\x00")
	if name == "" {
		name = fmt.Sprintf("%s-%d", filepath.Base(c.path), offset)
	}
	return &chardevLine{chipFd: c.file.Fd(), offset: uint32(offset), name: name}, nil
}

func (c *chardevChip) close() error {
	return c.file.Close()
}

type lineDirection int

const (
	dirUnset lineDirection = iota
	dirInput
	dirOutput
)

// chardevLine implements gpio.PinIO against one GPIO v2 line. The line's
// own file descriptor is requested lazily on first use and then
// reconfigured in place (GPIO_V2_LINE_SET_CONFIG) on every later direction
// change, rather than released and re-requested — the v2 ABI supports
// changing an already-requested line's direction directly.
type chardevLine struct {
	chipFd uintptr
	offset uint32
	name   string

	mu        sync.Mutex
	fd        int32
	direction lineDirection
	edge      gpio.Edge
	edgeFile  *os.File
}

func (l *chardevLine) String() string         { return l.name }
func (l *chardevLine) Name() string           { return l.name }
func (l *chardevLine) Number() int            { return int(l.offset) }
func (l *chardevLine) Function() string       { return "" }
func (l *chardevLine) DefaultPull() gpio.Pull { return gpio.PullUp }

// Pull reports PullNoChange: the bias last requested is not read back.
func (l *chardevLine) Pull() gpio.Pull { return gpio.PullNoChange }

func (l *chardevLine) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("linebus: PWM not supported on a bit-banged bus line")
}

func (l *chardevLine) Halt() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.edgeFile != nil {
		return l.edgeFile.SetReadDeadline(time.Unix(0, 1))
	}
	return nil
}

func (l *chardevLine) In(pull gpio.Pull, edge gpio.Edge) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.edge = edge
	l.direction = dirInput
	return l.configure(lineFlags(dirInput, pull, edge))
}

func (l *chardevLine) Out(level gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.direction != dirOutput {
		l.direction = dirOutput
		l.edge = gpio.NoEdge
		if err := l.configure(lineFlags(dirOutput, gpio.PullNoChange, gpio.NoEdge)); err != nil {
			return err
		}
	}
	var v lineValues
	v.mask = 1
	if level {
		v.bits = 1
	}
	return ioctlSetLineValues(uintptr(l.fd), &v)
}

func (l *chardevLine) Read() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.direction == dirUnset {
		l.direction = dirInput
		if err := l.configure(lineFlags(dirInput, gpio.PullUp, gpio.NoEdge)); err != nil {
			return gpio.Low
		}
	}
	var v lineValues
	v.mask = 1
	if err := ioctlGetLineValues(uintptr(l.fd), &v); err != nil {
		return gpio.Low
	}
	return v.bits&1 == 1
}

// WaitForEdge blocks on the line's event file descriptor, used by the
// interrupt-driven responder to wait for a clock edge instead of
// busy-polling Read.
func (l *chardevLine) WaitForEdge(timeout time.Duration) bool {
	l.mu.Lock()
	if l.edge == gpio.NoEdge || l.direction != dirInput {
		l.mu.Unlock()
		return false
	}
	if l.edgeFile == nil {
		if err := syscall.SetNonblock(int(l.fd), true); err != nil {
			l.mu.Unlock()
			return false
		}
		l.edgeFile = os.NewFile(uintptr(l.fd), fmt.Sprintf("gpio-line-%d", l.offset))
	}
	f := l.edgeFile
	l.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := f.SetReadDeadline(deadline); err != nil {
		return false
	}
	var ev lineEvent
	return binary.Read(f, binary.LittleEndian, &ev) == nil
}

// configure requests the line's fd on first use, or reconfigures the
// already-requested fd on later calls.
func (l *chardevLine) configure(flags uint64) error {
	if l.fd == 0 {
		var req lineRequest
		req.offsets[0] = l.offset
		req.numLines = 1
		req.config.flags = flags
		copy(req.consumer[:], consumerLabel())
		if err := ioctlLineRequest(l.chipFd, &req); err != nil {
			return fmt.Errorf("linebus: request line %d: %w", l.offset, err)
		}
		l.fd = req.fd
		l.edgeFile = nil
		return nil
	}
	var cfg lineConfig
	cfg.flags = flags
	if err := ioctlLineConfig(uintptr(l.fd), &cfg); err != nil {
		return fmt.Errorf("linebus: configure line %d: %w", l.offset, err)
	}
	l.edgeFile = nil
	return nil
}

func lineFlags(dir lineDirection, pull gpio.Pull, edge gpio.Edge) uint64 {
	var flags uint64
	switch dir {
	case dirInput:
		flags |= flagInput
	case dirOutput:
		flags |= flagOutput
	}
	switch pull {
	case gpio.PullUp:
		flags |= flagBiasPullUp
	case gpio.PullDown:
		flags |= flagBiasPullDown
	}
	switch edge {
	case gpio.RisingEdge:
		flags |= flagEdgeRising
	case gpio.FallingEdge:
		flags |= flagEdgeFalling
	case gpio.BothEdges:
		flags |= flagEdgeRising | flagEdgeFalling
	}
	return flags
}

// consumerLabel identifies this process's line requests the way `gpioinfo`
// reports them, truncated to fit the kernel's fixed-size consumer field.
func consumerLabel() []byte {
	s := fmt.Sprintf("%s@%d", filepath.Base(os.Args[0]), os.Getpid())
	b := []byte(s)
	if len(b) >= maxNameSize {
		b = b[:maxNameSize-1]
	}
	return b
}

var _ gpio.PinIO = (*chardevLine)(nil)
