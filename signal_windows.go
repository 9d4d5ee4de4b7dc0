package interprocess

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// semaphorePrefix namespaces the coupling semaphore among global kernel
// objects.
const semaphorePrefix = `Global\`

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procCreateSemaphoreW = kernel32.NewProc("CreateSemaphoreW")
	procReleaseSemaphore = kernel32.NewProc("ReleaseSemaphore")
)

// signal is a named Windows kernel semaphore. The kernel destroys it when
// the last handle closes, so Unlink is a no-op here.
type signal struct {
	handle windows.Handle
}

func newSignal(_, queueName string, initial int) (*signal, error) {
	if initial > maxInitialCount {
		return nil, ErrCountTooLarge
	}
	if len(queueName) > maxNameLen {
		return nil, ErrNameTooLong
	}

	namePtr, err := windows.UTF16PtrFromString(semaphorePrefix + signalTag + queueName)
	if err != nil {
		return nil, err
	}

	// Creates the semaphore or opens the existing one; the initial count
	// only applies on creation.
	h, _, errno := procCreateSemaphoreW.Call(0,
		uintptr(initial),
		uintptr(semValueMax),
		uintptr(unsafe.Pointer(namePtr)))
	if h == 0 {
		if errno == windows.ERROR_ACCESS_DENIED {
			return nil, os.ErrPermission
		}
		return nil, fmt.Errorf("failed to create semaphore: %w", errno)
	}
	return &signal{handle: windows.Handle(h)}, nil
}

// Release increments the count and wakes one waiter.
func (s *signal) Release() error {
	r, _, errno := procReleaseSemaphore.Call(uintptr(s.handle), 1, 0)
	if r == 0 {
		if errno == windows.ERROR_TOO_MANY_POSTS {
			return ErrSignalFull
		}
		return fmt.Errorf("failed to release semaphore: %w", errno)
	}
	return nil
}

// Wait decrements the count, blocking until it is positive. millis < 0
// blocks indefinitely, 0 polls, > 0 bounds the wait; an expired timeout
// reports false.
func (s *signal) Wait(millis int64) (bool, error) {
	t := uint32(windows.INFINITE)
	if millis >= 0 {
		t = uint32(millis)
	}
	ev, err := windows.WaitForSingleObject(s.handle, t)
	switch ev {
	case windows.WAIT_OBJECT_0:
		return true, nil
	case uint32(windows.WAIT_TIMEOUT):
		return false, nil
	}
	return false, fmt.Errorf("failed to wait on semaphore: %w", err)
}

func (s *signal) Close() {
	if s.handle != 0 {
		_ = windows.CloseHandle(s.handle)
		s.handle = 0
	}
}

func (s *signal) Unlink() error {
	return nil
}

func unlinkSignal(_, _ string) error {
	return nil
}
