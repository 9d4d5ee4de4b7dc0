package interprocess

import (
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexOpWait uintptr = 0
	futexOpWake uintptr = 1
)

// futexWait parks until the value at addr changes from ifValue or the
// timeout expires. millis <= 0 waits indefinitely. Returns nil when woken
// (or when the value already differed), ErrTimeout on expiry and
// ErrInterrupted when aborted by an OS signal.
func futexWait(addr *atomic.Uint32, ifValue uint32, millis int64) error {
	if millis <= 0 {
		// specifying NULL would prevent the call from being interruptable
		// cf. https://outerproduct.net/futex-dictionary.html#linux
		millis = math.MaxInt32 // a long time
	}

	var ts unix.Timespec
	ts.Sec = millis / 1e3
	ts.Nsec = millis % 1e3 * 1e6
	r, _, err := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexOpWait,
		uintptr(ifValue),
		uintptr(unsafe.Pointer(&ts)),
		0,
		0)
	if int32(r) >= 0 {
		return nil
	}
	switch err {
	case unix.ETIMEDOUT:
		return ErrTimeout
	case unix.EAGAIN:
		return nil
	case unix.EINTR:
		return ErrInterrupted
	}
	return err
}

// futexWake wakes one waiter parked on addr, or all of them when wakeAll is
// set.
func futexWake(addr *atomic.Uint32, wakeAll bool) error {
	wake := uintptr(1)
	if wakeAll {
		wake = uintptr(math.MaxInt32)
	}
	r, _, err := unix.Syscall(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexOpWake,
		wake)
	if int32(r) >= 0 || err == unix.ENOENT {
		return nil
	}
	return err
}
