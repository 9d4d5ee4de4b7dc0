package interprocess

// WrappedSpan is a non-owning view of a logical byte range inside the ring
// that may cross the wrap point. It is a pair of contiguous spans whose
// concatenation forms the range; the second span is empty when no wrap
// occurs.
//
// A WrappedSpan is only valid while the slot it points into is owned by the
// caller (a reserved slot on the publisher side, a locked slot on the
// subscriber side). It must not be retained after the enclosing operation
// returns.
type WrappedSpan struct {
	first  []byte
	second []byte
}

// Len returns the total number of bytes in the span.
func (s WrappedSpan) Len() int {
	return len(s.first) + len(s.second)
}

// At returns the byte at index i. It panics if i is out of range.
func (s WrappedSpan) At(i int) byte {
	if i < len(s.first) {
		return s.first[i]
	}
	return s.second[i-len(s.first)]
}

// Skip returns the span with the first offset bytes removed.
func (s WrappedSpan) Skip(offset int) WrappedSpan {
	if offset <= len(s.first) {
		return WrappedSpan{first: s.first[offset:], second: s.second}
	}
	return WrappedSpan{first: s.second[offset-len(s.first):]}
}

// Slice returns the sub-span [offset, offset+length).
func (s WrappedSpan) Slice(offset, length int) WrappedSpan {
	t := s.Skip(offset)
	if length <= len(t.first) {
		return WrappedSpan{first: t.first[:length]}
	}
	return WrappedSpan{first: t.first, second: t.second[:length-len(t.first)]}
}

// TryWrite copies p into the span. It reports false without writing when p
// is larger than the span.
func (s WrappedSpan) TryWrite(p []byte) bool {
	if len(p) > s.Len() {
		return false
	}
	n := copy(s.first, p)
	copy(s.second, p[n:])
	return true
}

// TryRead fills p from the span. It reports false without reading when p is
// larger than the span.
func (s WrappedSpan) TryRead(p []byte) bool {
	if len(p) > s.Len() {
		return false
	}
	n := copy(p, s.first)
	copy(p[n:], s.second)
	return true
}

// Bytes returns a freshly allocated contiguous copy of the span.
func (s WrappedSpan) Bytes() []byte {
	p := make([]byte, s.Len())
	n := copy(p, s.first)
	copy(p[n:], s.second)
	return p
}
