//go:build unix

package interprocess

import (
	"sync/atomic"
	"time"
)

// semState is the wire layout of a semaphore's backing region: the counter
// and the number of waiters parked on it, padded to the region alignment.
type semState struct {
	value   atomic.Uint32
	waiters atomic.Uint32
	_       [2]uint32
}

const semRegionSize = int64(16)

// signal is a named cross-process counting semaphore. POSIX named
// semaphores are not reachable from pure Go, so the counter lives in a tiny
// shared region of its own and waiters park on it with the kernel wait
// primitive (futex on Linux, os_sync_wait_on_address on macOS). Release and
// Wait keep normal counting-semaphore semantics across processes.
type signal struct {
	region *sharedRegion
	state  *semState
	dir    string
	file   string
}

func newSignal(dir, queueName string, initial int) (*signal, error) {
	if initial > maxInitialCount {
		return nil, ErrCountTooLarge
	}
	if len(queueName) > maxNameLen {
		return nil, ErrNameTooLong
	}

	file := "sem." + signalTag + queueName
	region, err := openRegion(dir, file, semRegionSize)
	if err != nil {
		return nil, err
	}

	s := &signal{
		region: region,
		state:  (*semState)(region.base()),
		dir:    dir,
		file:   file,
	}
	if region.created && initial > 0 {
		s.state.value.Store(uint32(initial))
	}
	return s, nil
}

// Release increments the count and wakes one waiter.
func (s *signal) Release() error {
	for {
		v := s.state.value.Load()
		if v >= semValueMax {
			return ErrSignalFull
		}
		if s.state.value.CompareAndSwap(v, v+1) {
			break
		}
	}
	if s.state.waiters.Load() > 0 {
		return futexWake(&s.state.value, false)
	}
	return nil
}

// Wait decrements the count, blocking until it is positive. millis < 0
// blocks indefinitely, 0 polls, > 0 bounds the wait; an expired timeout
// reports false.
func (s *signal) Wait(millis int64) (bool, error) {
	var deadline time.Time
	if millis > 0 {
		deadline = time.Now().Add(time.Duration(millis) * time.Millisecond)
	}
	for {
		v := s.state.value.Load()
		for v > 0 {
			if s.state.value.CompareAndSwap(v, v-1) {
				return true, nil
			}
			v = s.state.value.Load()
		}
		if millis == 0 {
			return false, nil
		}

		remaining := int64(-1)
		if millis > 0 {
			remaining = time.Until(deadline).Milliseconds()
			if remaining <= 0 {
				return false, nil
			}
		}

		s.state.waiters.Add(1)
		err := futexWait(&s.state.value, 0, remaining)
		s.state.waiters.Add(^uint32(0))
		switch err {
		case nil, ErrTimeout:
		default:
			return false, err
		}
	}
}

func (s *signal) Close() {
	if s.region != nil {
		s.region.Close()
		s.region = nil
	}
}

// Unlink removes the semaphore's backing file. Waiters already mapped keep
// their mapping; new opens will create a fresh semaphore.
func (s *signal) Unlink() error {
	return unlinkRegion(s.dir, s.file)
}

// unlinkSignal removes the backing file of the named queue's semaphore.
func unlinkSignal(dir, queueName string) error {
	return unlinkRegion(dir, "sem."+signalTag+queueName)
}
