package interprocess

import (
	"sync/atomic"
	"unsafe"
)

// Slot states stored in the first word of every message header.
const (
	// stateVacant marks unused ring bytes. Freshly created regions and
	// fully drained slots are zero, so Vacant must stay 0.
	stateVacant int32 = 0

	// stateReady marks a slot whose body has been fully written and may
	// be claimed by a subscriber.
	stateReady int32 = 1

	// stateLocked marks a slot claimed by exactly one subscriber.
	stateLocked int32 = 2

	// stateAborted marks a slot whose body write failed. Subscribers
	// reap it without exposing the body.
	stateAborted int32 = 3
)

// queueHeader occupies the first bytes of the shared region. It maps to the
// same 16-byte layout in every process attached to the queue, so the field
// order and types must not change.
//
// Both offsets are absolute, unbounded counters. The ring position of an
// offset is offset % bodyCapacity.
type queueHeader struct {
	head atomic.Int64 // next message to consume
	tail atomic.Int64 // where the next message will be placed
}

const (
	queueHeaderSize = int64(unsafe.Sizeof(queueHeader{}))

	// messageHeaderSize is the slot header: a 32-bit state word, 32 bits
	// of padding, a 32-bit body length, padded so the body that follows
	// is 8-aligned. The header is never dereferenced as one struct
	// because a slot start near the end of the ring can wrap; the two
	// 8-byte halves are addressed independently.
	messageHeaderSize = int64(16)

	// msgLengthOffset is the byte offset of the body-length word within
	// a slot. State lives at offset 0.
	msgLengthOffset = int64(8)

	slotAlignment = int64(8)
)

// align8 rounds n up to the next multiple of 8.
func align8(n int64) int64 {
	return (n + slotAlignment - 1) &^ (slotAlignment - 1)
}

// slotSize is the total ring footprint of a message with the given body
// length: header plus body, padded to 8 bytes.
func slotSize(bodyLength int64) int64 {
	return align8(messageHeaderSize + bodyLength)
}
