// Package seed provides the deterministic hashing and pseudo-random helpers
// behind reproducible pattern synthesis and mock data. Nothing here uses
// math/rand: the same input always yields the same output on every platform.
package seed

import "unicode/utf16"

// LCG constants for Next.
const (
	lcgMul = 9301
	lcgInc = 49297
	lcgMod = 233280
)

// Hash folds text into a non-negative integer with a 32-bit polynomial
// rolling hash (h*31 + c over UTF-16 code units).
func Hash(text string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Next advances seed by one linear-congruential step. The result is in
// [0, 233280) for non-negative input.
func Next(seed int64) int64 {
	return (seed*lcgMul + lcgInc) % lcgMod
}

// Intn returns seed mod n, or 0 when n <= 0.
func Intn(seed int64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(seed % int64(n))
}

// Shuffle returns a permutation of items driven by seed. The input slice is
// left untouched.
func Shuffle[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	copy(out, items)

	cur := seed
	for i := len(out) - 1; i > 0; i-- {
		cur = Next(cur)
		// floor(cur/lcgMod * (i+1)) without floating point
		j := int(cur * int64(i+1) / lcgMod)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
