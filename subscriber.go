package interprocess

import (
	"context"
	"fmt"
	"os"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

const (
	// spinYields is how many times a blocking dequeue yields before it
	// starts parking on the semaphore.
	spinYields = 32

	// maxWaitMillis caps the semaphore wait so cancellation is observed
	// promptly even when no publisher ever signals.
	maxWaitMillis = int64(10)
)

// Subscriber consumes messages from a queue. Any number of subscribers may
// attach to one queue; each message is delivered to exactly one of them.
type Subscriber struct {
	q      *queue
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
}

// NewSubscriber attaches a subscriber to the named queue, creating the
// shared region and semaphore if absent.
func NewSubscriber(opt Options) (*Subscriber, error) {
	q, err := openQueue(opt)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscriber{q: q, ctx: ctx, cancel: cancel}, nil
}

// Close cancels any blocked dequeue on this subscriber, waits for it to
// leave the shared region, and releases the mapping and semaphore handle.
func (s *Subscriber) Close() {
	// Wake blocked dequeues first; they hold the read lock until they
	// observe the cancellation.
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.q.close()
	}
}

// TryDequeue removes the message at the head of the queue. When dst is
// non-nil the body is copied into it, truncated to its length, and the
// result aliases dst; otherwise a new slice is allocated. Reports false
// when the queue is empty or the head slot is contended; it never blocks.
func (s *Subscriber) TryDequeue(dst []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false
	}
	return s.tryDequeue(dst, nil)
}

// TryDequeueZeroCopy exposes the head message's body to read as a
// WrappedSpan without copying. The reader returns true to consume the
// message or false to roll back, leaving it at the head for a later
// dequeue. The span is only valid inside the callback.
func (s *Subscriber) TryDequeueZeroCopy(read func(WrappedSpan) bool) bool {
	if read == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	_, ok := s.tryDequeue(nil, read)
	return ok
}

// Dequeue blocks until a message is available or ctx is cancelled. The
// queue-empty backoff yields first, then parks on the coupling semaphore
// with the wait growing 1 to 10 ms, which also bounds cancellation latency.
func (s *Subscriber) Dequeue(ctx context.Context, dst []byte) ([]byte, error) {
	return s.dequeue(ctx, dst, nil)
}

// DequeueZeroCopy is the blocking form of TryDequeueZeroCopy. Note that a
// reader returning false rolls the message back and the loop will offer it
// again.
func (s *Subscriber) DequeueZeroCopy(ctx context.Context, read func(WrappedSpan) bool) error {
	if read == nil {
		return os.ErrInvalid
	}
	_, err := s.dequeue(ctx, nil, read)
	return err
}

func (s *Subscriber) dequeue(ctx context.Context, dst []byte, read func(WrappedSpan) bool) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, os.ErrClosed
	}

	backoff := iox.Backoff{}
	waitMillis := int64(1)
	for i := 0; ; i++ {
		if err := s.cancelled(ctx); err != nil {
			return nil, err
		}
		if msg, ok := s.tryDequeue(dst, read); ok {
			return msg, nil
		}
		if i < spinYields {
			backoff.Wait()
			continue
		}
		if err := s.cancelled(ctx); err != nil {
			return nil, err
		}
		if _, err := s.q.sig.Wait(waitMillis); err != nil {
			return nil, err
		}
		if waitMillis < maxWaitMillis {
			waitMillis++
		}
	}
}

// cancelled folds the caller's context and the subscriber's local one; a
// closed subscriber reports os.ErrClosed.
func (s *Subscriber) cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ctx.Err() != nil {
		return os.ErrClosed
	}
	return nil
}

// tryDequeue is the non-blocking core shared by every dequeue variant.
// Callers hold the read lock.
func (s *Subscriber) tryDequeue(dst []byte, read func(WrappedSpan) bool) ([]byte, bool) {
	q := s.q
	sw := spin.Wait{}
	for {
		head := q.header.head.Load()
		tail := q.header.tail.Load()
		if head == tail {
			return nil, false
		}

		st := q.stateAt(head)
		observed := st.Load()
		if observed != stateReady && observed != stateAborted {
			// Not committed yet, or another subscriber holds the
			// lock.
			return nil, false
		}
		if !st.CompareAndSwap(observed, stateLocked) {
			return nil, false
		}

		if observed == stateAborted {
			// Garbage body from a failed publish; zero it and move
			// on to the next slot.
			s.drain(head, int64(q.bodyLengthAt(head).Load()))
			sw.Once()
			continue
		}

		if q.header.head.Load() != head {
			// The head moved while the slot was being locked; hand
			// the slot back.
			st.CompareAndSwap(stateLocked, stateReady)
			return nil, false
		}

		bodyLength := int64(q.bodyLengthAt(head).Load())
		var msg []byte
		if read != nil {
			// expose rolls the lock back itself on rejection or a
			// reader panic.
			if !s.expose(head, bodyLength, read) {
				return nil, false
			}
		} else {
			msg = q.buf.read(head+messageHeaderSize, bodyLength, dst)
		}

		s.drain(head, bodyLength)
		return msg, true
	}
}

// expose hands the locked slot's body to the caller's reader. A panic in
// the reader rolls the message back before propagating.
func (s *Subscriber) expose(head, bodyLength int64, read func(WrappedSpan) bool) bool {
	span, err := s.q.buf.span(head+messageHeaderSize, bodyLength)
	if err != nil {
		panic("interprocess: locked slot exceeds ring capacity")
	}
	committed := false
	defer func() {
		if !committed {
			s.q.stateAt(head).CompareAndSwap(stateLocked, stateReady)
		}
	}()
	committed = read(span)
	return committed
}

// drain zeroes the locked slot and advances the head past it. The state
// word is cleared last so the slot reads Vacant only once every other byte
// is zero. The head CAS cannot fail while the slot is locked; if it does,
// another subscriber advanced past a locked slot and the shared state is
// corrupt, so fail fast.
func (s *Subscriber) drain(head, bodyLength int64) {
	q := s.q
	size := slotSize(bodyLength)
	q.buf.clear(head+4, size-4)
	q.stateAt(head).Store(stateVacant)
	if !q.header.head.CompareAndSwap(head, head+size) {
		panic(fmt.Sprintf(
			"interprocess: head advanced past the slot locked at offset %d", head))
	}
}
