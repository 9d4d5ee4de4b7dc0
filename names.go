package interprocess

import (
	"crypto/rand"
	"time"
)

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomName generates a queue name of the requested length over the
// lowercase Latin alphabet. Entropy comes from the cryptographic RNG mixed
// with the wall clock's nanosecond reading, so names stay unique even when
// many are drawn in one scheduler tick. The length is clamped to the
// platform name limit.
func RandomName(length int) string {
	if length < 1 {
		length = 1
	}
	if length > maxNameLen {
		length = maxNameLen
	}
	buf := make([]byte, length)
	_, _ = rand.Read(buf)
	clock := uint64(time.Now().UnixNano())
	for i := range buf {
		b := uint64(buf[i]) ^ (clock >> uint((i%8)*8))
		buf[i] = nameAlphabet[b%uint64(len(nameAlphabet))]
	}
	return string(buf)
}
