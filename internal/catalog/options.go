package catalog

import (
	"sort"
	"strings"

	"sageset/web/internal/domain"
)

// Options are the choices offered for the categorical fields of an entry.
type Options struct {
	PrimaryMuscles   []string `json:"primaryMuscles"`
	Difficulties     []string `json:"difficulties"`
	MovementPatterns []string `json:"movementPatterns"`
}

// BuildOptions lists the seed values of each categorical field in sorted order,
// followed by the sorted values that only occur in the catalog.
func BuildOptions(seed []ImportRecord, entries []domain.CatalogEntry) Options {
	return Options{
		PrimaryMuscles:   fieldOptions(seed, entries, domain.FieldPrimaryMuscle, func(e domain.CatalogEntry) *string { return e.PrimaryMuscle }),
		Difficulties:     fieldOptions(seed, entries, domain.FieldDifficulty, func(e domain.CatalogEntry) *string { return e.Difficulty }),
		MovementPatterns: fieldOptions(seed, entries, domain.FieldMovementPattern, func(e domain.CatalogEntry) *string { return e.MovementPattern }),
	}
}

func fieldOptions(seed []ImportRecord, entries []domain.CatalogEntry, field string, get func(domain.CatalogEntry) *string) []string {
	base := uniqueSorted(func(add func(string)) {
		for _, rec := range seed {
			if s, ok := rec.Fields[field].(string); ok {
				add(s)
			}
		}
	})
	inBase := make(map[string]bool, len(base))
	for _, v := range base {
		inBase[v] = true
	}
	extras := uniqueSorted(func(add func(string)) {
		for _, e := range entries {
			if v := strings.TrimSpace(domain.StringValue(get(e))); !inBase[v] {
				add(v)
			}
		}
	})
	return append(base, extras...)
}

func uniqueSorted(collect func(add func(string))) []string {
	seen := map[string]bool{}
	out := []string{}
	collect(func(v string) {
		if v = strings.TrimSpace(v); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	sort.Strings(out)
	return out
}
