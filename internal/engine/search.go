package engine

import (
	"bytes"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/roach88/gate/internal/ir"
)

// SearchHit is one match of a search query.
type SearchHit struct {
	Path string `json:"path"`

	// Version is nil when the match is in the entry's initial snapshot.
	Version *ir.Version `json:"version,omitempty"`
}

// SearchAll finds query in every text file the tree ever held, across all
// versions, including files deleted since. Each hit names the file's path
// at the matching version. Binary content (invalid UTF-8) never matches.
//
// Hits are deduplicated and sorted by path, then time with the initial
// snapshot first.
func (e *Engine) SearchAll(query string) []SearchHit {
	hits := []SearchHit{}
	for _, ent := range e.historical() {
		if ent.IsDir {
			continue
		}
		hits = append(hits, searchEntry(ent, query)...)
	}
	return dedupeHits(hits)
}

// SearchFile returns the SearchAll hits whose path is p. Files that lived
// at p before being moved or deleted are included.
func (e *Engine) SearchFile(p, query string) []SearchHit {
	p = normalize(p)
	out := []SearchHit{}
	for _, h := range e.SearchAll(query) {
		if h.Path == p {
			out = append(out, h)
		}
	}
	return out
}

func searchEntry(ent *ir.Entry, query string) []SearchHit {
	var hits []SearchHit
	if containsText(ent.Data, query) {
		hits = append(hits, SearchHit{Path: ent.Path})
	}
	for _, m := range ent.Mods {
		v := m.Version
		st := ResolveAt(ent, v.Time)
		if containsText(st.Data, query) {
			hits = append(hits, SearchHit{Path: st.Path, Version: &v})
		}
	}
	return hits
}

func containsText(data []byte, query string) bool {
	if !utf8.Valid(data) {
		return false
	}
	return strings.Contains(string(data), query)
}

func dedupeHits(hits []SearchHit) []SearchHit {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		switch {
		case a.Version == nil:
			return b.Version != nil
		case b.Version == nil:
			return false
		case !a.Version.Time.Equal(b.Version.Time):
			return a.Version.Time.Before(b.Version.Time)
		}
		return bytes.Compare(a.Version.ID[:], b.Version.ID[:]) < 0
	})

	out := []SearchHit{}
	for i, h := range hits {
		if i > 0 && sameHit(out[len(out)-1], h) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func sameHit(a, b SearchHit) bool {
	if a.Path != b.Path {
		return false
	}
	if a.Version == nil || b.Version == nil {
		return a.Version == nil && b.Version == nil
	}
	return a.Version.ID == b.Version.ID
}
