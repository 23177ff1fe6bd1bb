package catalog

import (
	"strings"

	"sageset/web/internal/domain"
)

// Search keeps the entries whose name, id or any alias contains term,
// ignoring case. An empty term returns entries unchanged.
func Search(entries []domain.CatalogEntry, term string) []domain.CatalogEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}
	out := make([]domain.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.ID), term) ||
			strings.Contains(strings.ToLower(strings.Join(e.Aliases, " ")), term) {
			out = append(out, e)
		}
	}
	return out
}
