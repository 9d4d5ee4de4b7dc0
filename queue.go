package interprocess

import (
	"sync/atomic"
	"unsafe"
)

// queue is the per-process view of one shared queue: the mapped region, the
// header at its start, the ring body that follows, and the coupling
// semaphore. Publisher and Subscriber each hold one; all cross-process state
// lives in the region, so any number of handles may attach to one queue.
type queue struct {
	opt    Options
	region *sharedRegion
	header *queueHeader
	buf    circularBuffer
	sig    *signal
}

func openQueue(opt Options) (*queue, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}

	region, err := openRegion(opt.Path, opt.Name, opt.Capacity)
	if err != nil {
		return nil, err
	}
	sig, err := newSignal(opt.Path, opt.Name, 0)
	if err != nil {
		region.Close()
		return nil, err
	}

	if opt.UnlinkOnClose {
		registerExitUnlink(opt)
	}

	return &queue{
		opt:    opt,
		region: region,
		header: (*queueHeader)(region.base()),
		buf: newCircularBuffer(
			unsafe.Add(region.base(), queueHeaderSize), opt.bodyCapacity()),
		sig: sig,
	}, nil
}

func (q *queue) bodyCapacity() int64 {
	return q.buf.size
}

// stateAt returns the state word of the slot starting at the absolute
// offset. The state is the slot's first word and slot starts are 8-aligned,
// so the word never crosses the wrap point.
func (q *queue) stateAt(offset int64) *atomic.Int32 {
	return (*atomic.Int32)(q.buf.pointer(offset))
}

// bodyLengthAt returns the body-length word of the slot starting at offset.
// It lives in the slot's second 8-byte unit, which wraps independently of
// the first, hence the separate pointer lookup.
func (q *queue) bodyLengthAt(offset int64) *atomic.Int32 {
	return (*atomic.Int32)(q.buf.pointer(offset + msgLengthOffset))
}

func (q *queue) close() {
	if q.sig != nil {
		q.sig.Close()
		q.sig = nil
	}
	if q.region != nil {
		q.region.Close()
		q.region = nil
	}
	if q.opt.UnlinkOnClose {
		unregisterExitUnlink(q.opt)
		_ = Unlink(q.opt)
	}
}

// Unlink removes the named queue's kernel objects: the backing region file
// and the semaphore. Processes still attached keep their mappings; new
// opens create a fresh queue. No-op on Windows, where the kernel reclaims
// both on last handle close.
func Unlink(opt Options) error {
	if err := unlinkSignal(opt.Path, opt.Name); err != nil {
		return err
	}
	return unlinkRegion(opt.Path, opt.Name)
}

// Exists reports whether the named queue's backing region is present.
func Exists(opt Options) (bool, error) {
	return regionExists(opt.Path, opt.Name)
}
