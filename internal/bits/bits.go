// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// IsPowerOfTwo reports whether n is a power of two. Zero is not.
func IsPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
// Returns 1 for n == 0. Saturates at 1<<31 (the largest uint32 power of two).
func NextPowerOfTwo(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	if n > 1<<31 {
		return 1 << 31
	}
	return 1 << (32 - bits.LeadingZeros32(n-1))
}
