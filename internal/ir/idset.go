package ir

import (
	"bytes"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// IDSet is an unordered set of entry identifiers.
//
// All sets are thread-unsafe: set algebra in golang-set requires both
// operands to share an implementation, so always build them with NewIDSet.
type IDSet = mapset.Set[uuid.UUID]

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...uuid.UUID) IDSet {
	return mapset.NewThreadUnsafeSet(ids...)
}

// SortedIDs returns the members of s in byte order.
// A nil set yields an empty slice.
func SortedIDs(s IDSet) []uuid.UUID {
	if s == nil {
		return []uuid.UUID{}
	}
	ids := s.ToSlice()
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// SameIDs reports whether a and b hold the same members, treating nil as empty.
func SameIDs(a, b IDSet) bool {
	if a == nil {
		a = NewIDSet()
	}
	if b == nil {
		b = NewIDSet()
	}
	return a.Equal(b)
}
