package shared

import (
	"math/bits"
)

// NumBits returns the number of bits needed to represent n, with a minimum of 1.
func NumBits(n uint64) int {
	if n == 0 {
		return 1
	}
	return bits.Len64(n)
}

// IsPowerOfTwo reports whether x is a positive power of two.
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}
