// Package catalog holds the exercise catalog rules that do not touch a store:
// identifier assignment, duplicate detection by name, import parsing and
// reconciliation of import batches into a write plan.
package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultIdentifier is used when a name has no characters a slug can keep.
const DefaultIdentifier = "exercise"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name, replaces every run of characters outside [a-z0-9]
// with a single underscore and strips leading and trailing underscores.
// The result is empty when name has no ASCII letters or digits.
func Slugify(name string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}

// IDSet is a working set of identifiers already in use.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// UniqueIdentifier returns base if it is unused, otherwise the first unused
// candidate of base_2, base_3, ... An empty base falls back to DefaultIdentifier.
// It does not modify used; callers add the result before assigning the next id.
func UniqueIdentifier(base string, used IDSet) string {
	if base == "" {
		base = DefaultIdentifier
	}
	if !used.Has(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !used.Has(candidate) {
			return candidate
		}
	}
}
