// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size buffers that
live on the audio callback path.

Scratch buffers on that path are grown, never shrunk, and always to a power
of two, so a stream whose period length wobbles by a few frames settles on
one allocation instead of reallocating on every change.

Usage:

	// Next power of 2 for buffer sizing
	capacity := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Reuse mono scratch across periods
	mono = bitint.Grow(mono, frames)

----------------------------------------------------------------------

NextPowerOfTwo subtracts 1 before taking the bit length so that exact
powers of 2 are preserved:

	size 8:  bits.Len(7) = 3, 1 << 3 = 8
	size 9:  bits.Len(8) = 4, 1 << 4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2 have a
// single bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Grow returns buf resliced to length n. When the capacity is too small a
// new backing array with a power-of-two capacity is allocated; the old
// contents are not carried over. Negative n is treated as zero.
func Grow[T any](buf []T, n int) []T {
	n = max(n, 0)
	if n <= cap(buf) {
		return buf[:n]
	}
	return make([]T, n, NextPowerOfTwo(n))
}
