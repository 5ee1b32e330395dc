// Package accession provides helpers for the semicolon-joined accession
// strings used throughout ProteinPilot summary tables.
package accession

import (
	"path/filepath"
	"sort"
	"strings"
)

// JoinSep separates accessions inside consolidated cluster strings.
const JoinSep = "; "

// SplitSorted splits a semicolon-delimited accession string into its
// trimmed, alphabetically sorted components. Empty components are dropped.
func SplitSorted(s string) []string {
	parts := strings.Split(s, ";")
	accs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			accs = append(accs, p)
		}
	}
	sort.Strings(accs)
	return accs
}

// Canonical rejoins the sorted accessions of s with semicolons.
func Canonical(s string) string {
	return strings.Join(SplitSorted(s), ";")
}

// Set is a set of accession IDs.
type Set map[string]struct{}

// NewSet builds a Set by splitting s on sep.
func NewSet(s, sep string) Set {
	res := make(Set)
	for _, p := range strings.Split(s, sep) {
		res[p] = struct{}{}
	}
	return res
}

// Intersects reports whether the two sets share any accession.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for a := range small {
		if _, ok := large[a]; ok {
			return true
		}
	}
	return false
}

// Union returns a new set with the members of both sets.
func (s Set) Union(other Set) Set {
	res := make(Set, len(s)+len(other))
	for a := range s {
		res[a] = struct{}{}
	}
	for a := range other {
		res[a] = struct{}{}
	}
	return res
}

// Sorted returns the members in alphabetical order.
func (s Set) Sorted() []string {
	res := make([]string, 0, len(s))
	for a := range s {
		res = append(res, a)
	}
	sort.Strings(res)
	return res
}

// Join serializes the set back to its semicolon-joined string form.
func (s Set) Join() string {
	return strings.Join(s.Sorted(), JoinSep)
}

// FileID derives the 8-character experiment label from a file path.
func FileID(path string) string {
	base := filepath.Base(path)
	if len(base) < 8 {
		return base
	}
	return base[:8]
}

// OrderedCounts counts the occurrences of each value, preserving the order
// in which values first appear. Hash-map iteration would make downstream
// tables non-reproducible.
func OrderedCounts(values []string) ([]string, map[string]int) {
	order := make([]string, 0, len(values))
	counts := make(map[string]int, len(values))
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	return order, counts
}
