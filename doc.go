// Package interprocess provides a single-producer / multi-consumer
// inter-process byte-message queue backed by a named shared-memory region.
//
// Multiple OS processes mapping the same region observe one FIFO of
// variable-length byte messages. A publisher appends messages by advancing a
// 64-bit tail counter with compare-and-swap; subscribers claim the head slot
// by CAS on a per-slot state word, drain it, and advance the head. A named
// cross-process counting semaphore wakes blocked subscribers, but the
// semaphore is only a hint: all ordering is established by atomic operations
// on the shared queue header.
//
// A pair of queues forms a bidirectional Channel:
//
//	server, err := interprocess.NewChannel(interprocess.NewOptions("demo"), false)
//	client, err := interprocess.NewChannel(interprocess.NewOptions("demo"), true)
//
//	client.Publisher().TryEnqueue([]byte("ping"))
//	msg, err := server.Subscriber().Dequeue(ctx, nil)
package interprocess
