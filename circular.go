package interprocess

import "unsafe"

// circularBuffer is a wrap-aware view over a contiguous byte range of the
// shared region. Offsets passed to its methods are absolute counter values;
// they are reduced modulo the buffer size on entry. All unsafe pointer
// arithmetic over shared memory is kept inside this type.
type circularBuffer struct {
	base unsafe.Pointer
	size int64
}

func newCircularBuffer(base unsafe.Pointer, size int64) circularBuffer {
	return circularBuffer{base: base, size: size}
}

func (b *circularBuffer) wrap(offset int64) int64 {
	return offset % b.size
}

// pointer returns the raw address of offset within the buffer. It is the
// escape hatch for atomic access to slot header fields; callers must never
// dereference more than 8 bytes through it, since a longer range can cross
// the wrap point.
func (b *circularBuffer) pointer(offset int64) unsafe.Pointer {
	return unsafe.Add(b.base, b.wrap(offset))
}

// span returns the wrapped byte range [offset, offset+length).
func (b *circularBuffer) span(offset, length int64) (WrappedSpan, error) {
	if length > b.size {
		return WrappedSpan{}, ErrTooBig
	}
	if length == 0 {
		return WrappedSpan{}, nil
	}
	pos := b.wrap(offset)
	right := b.size - pos
	if length <= right {
		return WrappedSpan{
			first: unsafe.Slice((*byte)(unsafe.Add(b.base, pos)), length),
		}, nil
	}
	return WrappedSpan{
		first:  unsafe.Slice((*byte)(unsafe.Add(b.base, pos)), right),
		second: unsafe.Slice((*byte)(b.base), length-right),
	}, nil
}

// read copies length bytes starting at offset. When dst is non-nil the copy
// is truncated to fit dst and the result aliases it; otherwise a new slice
// is allocated.
func (b *circularBuffer) read(offset, length int64, dst []byte) []byte {
	if dst != nil && int64(len(dst)) < length {
		length = int64(len(dst))
	}
	if length == 0 {
		return dst[:0]
	}
	if dst == nil {
		dst = make([]byte, length)
	}
	s, err := b.span(offset, length)
	if err != nil {
		panic("interprocess: read past buffer capacity")
	}
	s.TryRead(dst[:length])
	return dst[:length]
}

// write copies src into the buffer starting at offset.
func (b *circularBuffer) write(src []byte, offset int64) {
	s, err := b.span(offset, int64(len(src)))
	if err != nil {
		panic("interprocess: write past buffer capacity")
	}
	s.TryWrite(src)
}

// clear zeroes length bytes starting at offset.
func (b *circularBuffer) clear(offset, length int64) {
	s, err := b.span(offset, length)
	if err != nil {
		panic("interprocess: clear past buffer capacity")
	}
	clearBytes(s.first)
	clearBytes(s.second)
}

func clearBytes(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
