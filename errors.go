package interprocess

import "errors"

var (
	// ErrNameTooLong is returned when a queue or semaphore name exceeds
	// the platform limit.
	ErrNameTooLong = errors.New("queue name too long for this platform")

	// ErrCountTooLarge is returned when a semaphore is created with an
	// initial count above the portable maximum (32767).
	ErrCountTooLarge = errors.New("semaphore initial count too large")

	// ErrSignalFull is returned when releasing the semaphore would
	// overflow its maximum value. The queue is unusable afterwards.
	ErrSignalFull = errors.New("semaphore value overflow")

	// ErrInterrupted is returned when a wait was aborted by an OS signal.
	// Callers should treat it as cancellation.
	ErrInterrupted = errors.New("wait interrupted")

	// ErrTimeout is returned when a timed wait expired.
	ErrTimeout = errors.New("waiting timeout")

	// ErrTooBig is returned when a requested span is larger than the
	// buffer it is taken from.
	ErrTooBig = errors.New("request size too big")
)
