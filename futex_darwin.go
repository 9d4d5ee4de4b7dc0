package interprocess

import (
	"sync/atomic"
	"syscall"
	"unsafe"
)

// futexWait parks until the value at addr changes from ifValue or the
// timeout expires, using the libc os_sync_wait_on_address family.
// millis <= 0 waits indefinitely. Returns nil when woken (or when the value
// already differed), ErrTimeout on expiry and ErrInterrupted when aborted
// by an OS signal.
func futexWait(addr *atomic.Uint32, ifValue uint32, millis int64) error {
	var errno syscall.Errno
	ret := 0
	if millis <= 0 {
		ret, errno = osSyncWaitOnAddress(
			unsafe.Pointer(addr),
			uint64(ifValue),
			unsafe.Sizeof(*addr),
			osSyncWaitOnAddressShared)
	} else {
		ret, errno = osSyncWaitOnAddressWithTimeout(
			unsafe.Pointer(addr),
			uint64(ifValue),
			unsafe.Sizeof(*addr),
			osSyncWaitOnAddressShared,
			osClockMachAbsoluteTime,
			uint64(millis)*1e6)
	}

	if int32(ret) >= 0 {
		return nil
	}
	switch errno {
	case syscall.ETIMEDOUT:
		return ErrTimeout
	case syscall.EAGAIN:
		return nil
	case syscall.EINTR:
		return ErrInterrupted
	}
	return errno
}

// futexWake wakes one waiter parked on addr, or all of them when wakeAll is
// set.
func futexWake(addr *atomic.Uint32, wakeAll bool) error {
	for {
		var errno syscall.Errno
		ret := 0
		if wakeAll {
			ret, errno = osSyncWakeByAddressAll(
				unsafe.Pointer(addr),
				unsafe.Sizeof(*addr),
				osSyncWakeByAddressShared)
		} else {
			ret, errno = osSyncWakeByAddressAny(
				unsafe.Pointer(addr),
				unsafe.Sizeof(*addr),
				osSyncWakeByAddressShared)
		}

		if int32(ret) >= 0 {
			return nil
		}
		if errno == syscall.ENOENT {
			// no waiters
			return nil
		}
		if errno == syscall.EINTR {
			continue
		}
		return errno
	}
}

// Imported functions from libc; requires macOS 14.4+.
const (
	osClockMachAbsoluteTime   = 32
	osSyncWaitOnAddressShared = 1
	osSyncWakeByAddressShared = 1
)

//go:linkname syscall_rawSyscall syscall.rawSyscall
func syscall_rawSyscall(fn, a1, a2, a3 uintptr) (r1, r2 uintptr, err syscall.Errno)

//go:linkname syscall_syscall6 syscall.syscall6
func syscall_syscall6(fn, a1, a2, a3, a4, a5, a6 uintptr) (r1, r2 uintptr, err syscall.Errno)

//go:cgo_import_dynamic libc_os_sync_wait_on_address os_sync_wait_on_address "/usr/lib/libSystem.B.dylib"
//go:cgo_import_dynamic libc_os_sync_wait_on_address_with_timeout os_sync_wait_on_address_with_timeout "/usr/lib/libSystem.B.dylib"
//go:cgo_import_dynamic libc_os_sync_wake_by_address_any os_sync_wake_by_address_any "/usr/lib/libSystem.B.dylib"
//go:cgo_import_dynamic libc_os_sync_wake_by_address_all os_sync_wake_by_address_all "/usr/lib/libSystem.B.dylib"

var libc_os_sync_wait_on_address_trampoline_addr uintptr
var libc_os_sync_wait_on_address_with_timeout_trampoline_addr uintptr
var libc_os_sync_wake_by_address_any_trampoline_addr uintptr
var libc_os_sync_wake_by_address_all_trampoline_addr uintptr

func osSyncWaitOnAddress(addr unsafe.Pointer, value uint64, size uintptr,
	flags uint32) (int, syscall.Errno) {
	r0, _, e1 := syscall_syscall6(
		libc_os_sync_wait_on_address_trampoline_addr,
		uintptr(addr),
		uintptr(value),
		size,
		uintptr(flags),
		0, 0,
	)
	return int(r0), e1
}

func osSyncWaitOnAddressWithTimeout(addr unsafe.Pointer, value uint64,
	size uintptr, flags uint32, clockid uint32, timeoutNs uint64) (int, syscall.Errno) {
	r0, _, e1 := syscall_syscall6(
		libc_os_sync_wait_on_address_with_timeout_trampoline_addr,
		uintptr(addr),
		uintptr(value),
		size,
		uintptr(flags),
		uintptr(clockid),
		uintptr(timeoutNs),
	)
	return int(r0), e1
}

func osSyncWakeByAddressAny(addr unsafe.Pointer, size uintptr, flags uint32) (int, syscall.Errno) {
	r0, _, e1 := syscall_rawSyscall(
		libc_os_sync_wake_by_address_any_trampoline_addr,
		uintptr(addr),
		size,
		uintptr(flags),
	)
	return int(r0), e1
}

func osSyncWakeByAddressAll(addr unsafe.Pointer, size uintptr, flags uint32) (int, syscall.Errno) {
	r0, _, e1 := syscall_rawSyscall(
		libc_os_sync_wake_by_address_all_trampoline_addr,
		uintptr(addr),
		size,
		uintptr(flags),
	)
	return int(r0), e1
}
