package ir

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// ContentHash returns the hex-encoded xxh3-128 digest of data.
//
// Used for change detection only: comparing two files by digest instead of
// holding both byte slices side by side. It is not an integrity check.
func ContentHash(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// SameContent reports whether a and b hold identical bytes.
func SameContent(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return xxh3.Hash128(a) == xxh3.Hash128(b)
}
