package catalog

import (
	"strings"

	"sageset/web/internal/domain"
)

// NormalizeName lower-cases name, collapses whitespace runs to one space and
// trims the ends. Two names with the same normalized form are duplicates.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Index is derived from one catalog snapshot: the identifiers in use and the
// normalized name of every entry. It is never updated in place; build a new one
// from the next snapshot.
type Index struct {
	ids   IDSet
	names map[string]string // normalized name -> id
}

// NewIndex builds an index over entries. When two stored entries already share
// a normalized name the first one wins.
func NewIndex(entries []domain.CatalogEntry) *Index {
	idx := &Index{
		ids:   make(IDSet, len(entries)),
		names: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		idx.ids.Add(e.ID)
		key := NormalizeName(e.Name)
		if key == "" {
			continue
		}
		if _, taken := idx.names[key]; !taken {
			idx.names[key] = e.ID
		}
	}
	return idx
}

// Len is the number of identifiers in the index.
func (x *Index) Len() int { return len(x.ids) }

// IDs returns a copy of the identifiers in use.
func (x *Index) IDs() IDSet { return x.ids.Clone() }

func (x *Index) Has(id string) bool { return x.ids.Has(id) }

// Lookup returns the id of the entry whose normalized name matches name.
func (x *Index) Lookup(name string) (string, bool) {
	id, ok := x.names[NormalizeName(name)]
	return id, ok
}

// IsDuplicate is true when another entry than excludingID already uses name.
func (x *Index) IsDuplicate(name, excludingID string) bool {
	key := NormalizeName(name)
	if key == "" {
		return false
	}
	id, ok := x.names[key]
	return ok && id != excludingID
}

func (x *Index) nameMap() map[string]string {
	out := make(map[string]string, len(x.names))
	for k, v := range x.names {
		out[k] = v
	}
	return out
}
