package interprocess

import (
	"sync"

	"code.hybscloud.com/spin"
)

// Publisher appends messages to a queue. The design assumes one active
// publisher per queue: the tail-advance CAS tolerates more, but the
// fail-fast after a failed semaphore release assumes a single publisher
// owns recovery.
type Publisher struct {
	q      *queue
	mu     sync.RWMutex
	closed bool
}

// NewPublisher attaches a publisher to the named queue, creating the shared
// region and semaphore if absent.
func NewPublisher(opt Options) (*Publisher, error) {
	q, err := openQueue(opt)
	if err != nil {
		return nil, err
	}
	return &Publisher{q: q}, nil
}

// Close releases the publisher's mapping and semaphore handle. Messages
// already committed stay in the region for subscribers to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.q.close()
	}
}

// TryEnqueue appends msg to the queue. It reports false when the queue does
// not currently have room for the message; it never blocks.
func (p *Publisher) TryEnqueue(msg []byte) bool {
	return p.TryEnqueueZeroCopy(len(msg), func(s WrappedSpan) int {
		s.TryWrite(msg)
		return len(msg)
	})
}

// TryEnqueueZeroCopy reserves a reserve-byte slot and hands its body to
// write as a WrappedSpan. The writer returns the number of bytes it
// produced: exactly reserve commits the message, anything else (or a panic)
// aborts the slot, which subscribers reap silently. The reservation is
// consumed either way. Reports false when there is no room, in which case
// write is not invoked. The span is only valid inside the callback.
func (p *Publisher) TryEnqueueZeroCopy(reserve int, write func(WrappedSpan) int) bool {
	if reserve < 0 || write == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	q := p.q
	bodyLength := int64(reserve)
	size := slotSize(bodyLength)

	sw := spin.Wait{}
	for {
		head := q.header.head.Load()
		tail := q.header.tail.Load()
		if size > q.bodyCapacity()-(tail-head) {
			return false
		}
		if q.header.tail.CompareAndSwap(tail, tail+size) {
			// The slot [tail, tail+size) now belongs to this
			// publisher alone.
			return p.fill(tail, bodyLength, write)
		}
		sw.Once()
	}
}

// fill writes the slot body and commits its header. Once the tail CAS has
// succeeded the slot exists for every subscriber, so a parseable header
// must be left behind no matter how the body write went: Ready on success,
// Aborted otherwise, the body length recording the slot footprint in both
// cases.
func (p *Publisher) fill(tail, bodyLength int64, write func(WrappedSpan) int) bool {
	q := p.q
	span, err := q.buf.span(tail+messageHeaderSize, bodyLength)
	if err != nil {
		panic("interprocess: reserved slot exceeds ring capacity")
	}

	n, panicked := runWriter(write, span)

	state := stateAborted
	if panicked == nil && int64(n) == bodyLength {
		state = stateReady
	}
	q.bodyLengthAt(tail).Store(int32(bodyLength))
	q.stateAt(tail).Store(state)

	// The message is committed; without the wakeup other participants
	// may stall forever, so a failed release is unrecoverable.
	if err := q.sig.Release(); err != nil {
		panic("interprocess: semaphore release failed after commit: " + err.Error())
	}

	if panicked != nil {
		panic(panicked)
	}
	return state == stateReady
}

func runWriter(write func(WrappedSpan) int, span WrappedSpan) (n int, panicked any) {
	defer func() {
		panicked = recover()
	}()
	return write(span), nil
}
