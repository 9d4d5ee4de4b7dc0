package interprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueZeroCopy(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 64))

	ok := pub.TryEnqueueZeroCopy(5, func(s WrappedSpan) int {
		require.Equal(t, 5, s.Len())
		require.True(t, s.TryWrite([]byte{1, 2, 3, 4, 5}))
		return 5
	})
	require.True(t, ok)

	got, ok := sub.TryDequeue(nil)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestEnqueueZeroCopyRejectedBeforeWriter(t *testing.T) {
	pub, _ := newPair(t, testOptions(t, 40))

	require.True(t, pub.TryEnqueueZeroCopy(3, func(s WrappedSpan) int {
		s.TryWrite([]byte{100, 110, 120})
		return 3
	}))

	// no room left: the writer must not run
	invoked := false
	ok := pub.TryEnqueueZeroCopy(1, func(WrappedSpan) int {
		invoked = true
		panic("writer must not be invoked")
	})
	assert.False(t, ok)
	assert.False(t, invoked)
}

func TestEnqueueZeroCopyAbortOnZeroReturn(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 40))

	// the writer declines; the reservation is still consumed
	assert.False(t, pub.TryEnqueueZeroCopy(3, func(WrappedSpan) int {
		return 0
	}))
	assert.Equal(t, slotSize(3), pub.q.header.tail.Load())

	// the aborted slot occupies the ring until a dequeue reaps it
	assert.False(t, pub.TryEnqueue([]byte{1, 2, 3}))

	_, ok := sub.TryDequeue(nil)
	assert.False(t, ok)

	// reaped: the ring is usable again
	assert.True(t, pub.TryEnqueue([]byte{1, 2, 3}))
	got, ok := sub.TryDequeue(nil)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestEnqueueZeroCopyAbortOnPanic(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 64))

	assert.Panics(t, func() {
		pub.TryEnqueueZeroCopy(3, func(WrappedSpan) int {
			panic("writer failure")
		})
	})
	// the slot was committed as aborted before the panic propagated
	assert.Equal(t, slotSize(3), pub.q.header.tail.Load())

	_, ok := sub.TryDequeue(nil)
	assert.False(t, ok)
	assert.Equal(t, pub.q.header.head.Load(), pub.q.header.tail.Load())
}

func TestEnqueueZeroCopyShortWriteAborts(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 64))

	// writing fewer bytes than reserved cannot be framed; the slot is
	// aborted rather than committed short
	assert.False(t, pub.TryEnqueueZeroCopy(8, func(s WrappedSpan) int {
		s.TryWrite([]byte{1, 2})
		return 2
	}))
	_, ok := sub.TryDequeue(nil)
	assert.False(t, ok)
}

func TestEnqueueAfterClose(t *testing.T) {
	opt := testOptions(t, 64)
	pub, err := NewPublisher(opt)
	require.NoError(t, err)
	pub.Close()
	assert.False(t, pub.TryEnqueue([]byte{1}))
}

func TestEnqueueEmptyMessage(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 64))

	require.True(t, pub.TryEnqueue(nil))
	got, ok := sub.TryDequeue(nil)
	require.True(t, ok)
	assert.Len(t, got, 0)
}
