package interprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t testing.TB, capacity int64) Options {
	t.Helper()
	return NewOptions(RandomName(10),
		WithPath(t.TempDir()), WithCapacity(capacity))
}

func newPair(t testing.TB, opt Options) (*Publisher, *Subscriber) {
	t.Helper()
	pub, err := NewPublisher(opt)
	require.NoError(t, err)
	t.Cleanup(pub.Close)
	sub, err := NewSubscriber(opt)
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	return pub, sub
}

func TestOptionsValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := NewPublisher(NewOptions("", WithPath(dir)))
	assert.Error(t, err)

	_, err = NewPublisher(NewOptions("a/b", WithPath(dir)))
	assert.Error(t, err)

	// capacity not a multiple of 8
	_, err = NewPublisher(NewOptions("q", WithPath(dir), WithCapacity(41)))
	assert.Error(t, err)

	// capacity not larger than the header
	_, err = NewPublisher(NewOptions("q", WithPath(dir), WithCapacity(16)))
	assert.Error(t, err)
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 40))

	msg := []byte{100, 110, 120}
	for i := 0; i < 3; i++ {
		require.True(t, pub.TryEnqueue(msg))
		got, ok := sub.TryDequeue(nil)
		require.True(t, ok)
		assert.Equal(t, msg, got)
	}

	// a short destination buffer truncates the body
	require.True(t, pub.TryEnqueue(msg))
	got, ok := sub.TryDequeue(make([]byte, 2))
	require.True(t, ok)
	assert.Equal(t, []byte{100, 110}, got)
}

func TestQueueFull(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 40))

	// slotSize(3) = 24 fills the 24-byte body exactly
	require.True(t, pub.TryEnqueue([]byte{100, 110, 120}))
	assert.False(t, pub.TryEnqueue([]byte{100}))

	// draining frees the whole body again
	_, ok := sub.TryDequeue(nil)
	require.True(t, ok)
	assert.True(t, pub.TryEnqueue([]byte{100}))
}

func TestSmallestLegalCapacity(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, queueHeaderSize+8))

	// an 8-byte body cannot hold any slot
	assert.False(t, pub.TryEnqueue([]byte{1}))
	assert.False(t, pub.TryEnqueue(nil))
	_, ok := sub.TryDequeue(nil)
	assert.False(t, ok)
}

func TestSlotCrossesWrapBoundary(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 128))

	msg := make([]byte, 50)
	for i := range msg {
		msg[i] = byte(i + 1)
	}

	// slotSize(50) = 72 against a 112-byte body: the second slot crosses
	// the wrap point, and the third starts past it at ring position 32
	for i := 0; i < 3; i++ {
		require.True(t, pub.TryEnqueue(msg), "iteration %d", i)
		got, ok := sub.TryDequeue(nil)
		require.True(t, ok, "iteration %d", i)
		require.Equal(t, msg, got, "iteration %d", i)
	}
}

func TestWrapRoundTripLong(t *testing.T) {
	pub, sub := newPair(t, testOptions(t, 1024))

	msg := make([]byte, 66)
	for i := range msg {
		msg[i] = byte(255 - i)
	}

	for i := 0; i < 20000; i++ {
		require.True(t, pub.TryEnqueue(msg), "iteration %d", i)
		got, ok := sub.TryDequeue(nil)
		require.True(t, ok, "iteration %d", i)
		require.Equal(t, msg, got, "iteration %d", i)
	}

	// monotone counters, bounded distance
	head := pub.q.header.head.Load()
	tail := pub.q.header.tail.Load()
	assert.Equal(t, head, tail)
	assert.Equal(t, int64(20000)*slotSize(66), tail)
}

func TestDrainedSlotIsZero(t *testing.T) {
	opt := testOptions(t, 64)
	pub, sub := newPair(t, opt)

	require.True(t, pub.TryEnqueue([]byte{1, 2, 3, 4, 5}))
	_, ok := sub.TryDequeue(nil)
	require.True(t, ok)

	mem := pub.q.region.bytes()
	for i := queueHeaderSize; i < opt.Capacity; i++ {
		require.Zero(t, mem[i], "byte %d not zeroed", i)
	}
}

func TestPublisherCloseKeepsMessages(t *testing.T) {
	opt := testOptions(t, 64)

	pub, err := NewPublisher(opt)
	require.NoError(t, err)
	require.True(t, pub.TryEnqueue([]byte{42, 43}))
	pub.Close()

	sub, err := NewSubscriber(opt)
	require.NoError(t, err)
	got, ok := sub.TryDequeue(nil)
	require.True(t, ok)
	assert.Equal(t, []byte{42, 43}, got)
	sub.Close()

	// a fresh subscriber sees no ghost messages
	sub2, err := NewSubscriber(opt)
	require.NoError(t, err)
	defer sub2.Close()
	_, ok = sub2.TryDequeue(nil)
	assert.False(t, ok)
}

func TestUnlinkOnClose(t *testing.T) {
	opt := testOptions(t, 64)
	opt.UnlinkOnClose = true

	pub, err := NewPublisher(opt)
	require.NoError(t, err)
	require.True(t, pub.TryEnqueue([]byte{1}))

	ok, err := Exists(opt)
	require.NoError(t, err)
	assert.True(t, ok)

	pub.Close()
	ok, err = Exists(opt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnlinkAndExists(t *testing.T) {
	opt := testOptions(t, 64)

	ok, err := Exists(opt)
	require.NoError(t, err)
	assert.False(t, ok)

	pub, err := NewPublisher(opt)
	require.NoError(t, err)
	pub.Close()

	ok, err = Exists(opt)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, Unlink(opt))
	ok, err = Exists(opt)
	require.NoError(t, err)
	assert.False(t, ok)
}
