// Package encoding provides the uvarint length-prefixed string framing used
// by the arena. A framed string is a uvarint byte count followed by the raw
// bytes; the empty string frames as the single byte 0x00.
package encoding

import "encoding/binary"

// StringSize returns the framed size of a string of n bytes.
func StringSize(n int) int {
	return uvarintLen(uint64(n)) + n
}

// PutString frames s into buf and returns the number of bytes written.
// buf must have at least StringSize(len(s)) bytes available.
func PutString(buf []byte, s []byte) int {
	n := binary.PutUvarint(buf, uint64(len(s)))
	return n + copy(buf[n:], s)
}

// StringAt decodes the framed string starting at buf[0] and returns a view
// into buf. The view aliases buf; it is only valid while buf is.
// Returns false if the frame is corrupt or runs past the end of buf.
func StringAt(buf []byte) ([]byte, bool) {
	size, n := binary.Uvarint(buf)
	if n <= 0 || size > uint64(len(buf)-n) {
		return nil, false
	}
	return buf[n : n+int(size)], true
}

// uvarintLen returns the encoded size of v as a uvarint.
func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
