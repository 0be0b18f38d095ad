// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package linebus

// Raw GPIO v2 chardev ioctl definitions: struct layouts and ioctl numbers
// taken from the kernel's <linux/gpio.h>/<asm-generic/ioctl.h>, since
// these are ABI facts rather than a design choice. Only the subset this
// package actually issues is kept: chip info, line info, line request,
// line reconfiguration, and get/set line values — no batched multi-line
// request path, since a bus only ever needs one line at a time here.

import (
	"errors"
	"syscall"
	"unsafe"
)

const (
	iocNone  = uintptr(0)
	iocWrite = uintptr(1)
	iocRead  = uintptr(2)

	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = uintptr(0)
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func iocCode(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func iocR(nr uintptr, size uintptr) uintptr  { return iocCode(iocRead, gpioIOCMagic, nr, size) }
func iocWR(nr uintptr, size uintptr) uintptr { return iocCode(iocRead|iocWrite, gpioIOCMagic, nr, size) }

const (
	maxNameSize = 32
	maxAttrs    = 10
	maxLines    = 64

	gpioIOCMagic = uintptr(0xb4)

	flagInput        uint64 = 1 << 2
	flagOutput       uint64 = 1 << 3
	flagEdgeRising   uint64 = 1 << 4
	flagEdgeFalling  uint64 = 1 << 5
	flagBiasPullUp   uint64 = 1 << 8
	flagBiasPullDown uint64 = 1 << 9
)

type chipInfo struct {
	name  [maxNameSize]byte
	label [maxNameSize]byte
	lines uint32
}

type lineAttribute struct {
	id      uint32
	padding uint32
	value   uint64
}

type lineConfigAttribute struct {
	attr lineAttribute
	mask uint64
}

type lineConfig struct {
	flags    uint64
	numAttrs uint32
	padding  [5]uint32
	attrs    [maxAttrs]lineConfigAttribute
}

type lineRequest struct {
	offsets         [maxLines]uint32
	consumer        [maxNameSize]byte
	config          lineConfig
	numLines        uint32
	eventBufferSize uint32
	padding         [5]uint32
	fd              int32
}

type lineValues struct {
	bits uint64
	mask uint64
}

type lineInfo struct {
	name     [maxNameSize]byte
	consumer [maxNameSize]byte
	offset   uint32
	numAttrs uint32
	flags    uint64
	attrs    [maxAttrs]lineAttribute
	padding  [4]uint32
}

type lineEvent struct {
	timestampNS uint64
	id          uint32
	offset      uint32
	seqno       uint32
	lineSeqno   uint32
	padding     [6]uint32
}

func doIoctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, req, uintptr(arg)); errno != 0 {
		return errors.New(errno.Error())
	}
	return nil
}

func ioctlChipInfo(fd uintptr, data *chipInfo) error {
	return doIoctl(fd, iocR(0x01, unsafe.Sizeof(chipInfo{})), unsafe.Pointer(data))
}

func ioctlLineInfo(fd uintptr, data *lineInfo) error {
	return doIoctl(fd, iocWR(0x05, unsafe.Sizeof(lineInfo{})), unsafe.Pointer(data))
}

func ioctlLineRequest(fd uintptr, data *lineRequest) error {
	return doIoctl(fd, iocWR(0x07, unsafe.Sizeof(lineRequest{})), unsafe.Pointer(data))
}

func ioctlLineConfig(fd uintptr, data *lineConfig) error {
	return doIoctl(fd, iocWR(0x0d, unsafe.Sizeof(lineConfig{})), unsafe.Pointer(data))
}

func ioctlGetLineValues(fd uintptr, data *lineValues) error {
	return doIoctl(fd, iocWR(0x0e, unsafe.Sizeof(lineValues{})), unsafe.Pointer(data))
}

func ioctlSetLineValues(fd uintptr, data *lineValues) error {
	return doIoctl(fd, iocWR(0x0f, unsafe.Sizeof(lineValues{})), unsafe.Pointer(data))
}
