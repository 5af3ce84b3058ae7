package utils

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A Caser keeps state between calls and must not be shared across goroutines,
// so each Normalize call borrows its own from the pool.
var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// Normalize lowercases s using Unicode case mapping.
// Ordering and prefix checks are done on the result with plain byte comparison.
func Normalize(s string) string {
	if isLowerASCII(s) {
		return s
	}
	c := lowerPool.Get().(*cases.Caser)
	out := c.String(s)
	lowerPool.Put(c)
	return out
}

// isLowerASCII reports whether s is already ASCII with no uppercase letters.
func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x80 || ('A' <= b && b <= 'Z') {
			return false
		}
	}
	return true
}

// CreateRankList creates a slice of ranks based on position.
// The rank starts at 1 for the first item and increments for subsequent items.
// Useful for ranking items that are already sorted.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := 0; i < count; i++ {
		ranks[i] = uint16(i + 1)
	}
	return ranks
}
