package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/repository"
)

// CatalogRepository keeps entries in a map guarded by a mutex.
type CatalogRepository struct {
	notifier
	mu      sync.RWMutex
	entries map[string]domain.CatalogEntry
	now     func() time.Time
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository returns a repository pre-populated with entries.
func NewCatalogRepository(entries ...domain.CatalogEntry) *CatalogRepository {
	r := &CatalogRepository{
		entries: make(map[string]domain.CatalogEntry, len(entries)),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, e := range entries {
		r.entries[e.ID] = cloneEntry(e)
	}
	return r
}

func (r *CatalogRepository) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CatalogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneEntry(e)
	return &e, nil
}

func (r *CatalogRepository) FindByNormalizedName(ctx context.Context, nameNormalized string) ([]domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.CatalogEntry{}
	for _, e := range r.entries {
		if e.NameNormalized == nameNormalized {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *CatalogRepository) Insert(ctx context.Context, entry *domain.CatalogEntry) error {
	r.mu.Lock()
	if _, ok := r.entries[entry.ID]; ok {
		r.mu.Unlock()
		return repository.ErrDuplicateKey
	}
	ts := r.now()
	entry.CreatedAt = ts
	entry.UpdatedAt = ts
	r.entries[entry.ID] = cloneEntry(*entry)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *CatalogRepository) Update(ctx context.Context, entry *domain.CatalogEntry) error {
	r.mu.Lock()
	existing, ok := r.entries[entry.ID]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	// Media only changes through SetFields.
	entry.VideoURL = existing.VideoURL
	entry.VideoPosterURL = existing.VideoPosterURL
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = r.now()
	r.entries[entry.ID] = cloneEntry(*entry)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *CatalogRepository) SetFields(ctx context.Context, id string, fields catalog.Fields) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	catalog.ApplyFields(&e, fields)
	e.UpdatedAt = r.now()
	r.entries[id] = e
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.entries[id]; !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	r.mu.Unlock()

	r.notify()
	return nil
}

// BatchWrite applies the writes to a copy of the catalog and swaps it in only
// when every write succeeded. A set write for an id that is already stored
// fails the whole batch with ErrDuplicateKey.
func (r *CatalogRepository) BatchWrite(ctx context.Context, writes []catalog.Write) error {
	if len(writes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	next := make(map[string]domain.CatalogEntry, len(r.entries)+len(writes))
	for id, e := range r.entries {
		next[id] = e
	}
	ts := r.now()
	for _, w := range writes {
		var e domain.CatalogEntry
		switch w.Mode {
		case catalog.WriteSet:
			if _, taken := next[w.ID]; taken {
				r.mu.Unlock()
				return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, w.ID)
			}
			e = domain.CatalogEntry{ID: w.ID, CreatedAt: ts}
		case catalog.WriteMerge:
			existing, ok := next[w.ID]
			if !ok {
				existing = domain.CatalogEntry{ID: w.ID, CreatedAt: ts}
			}
			e = existing
		default:
			r.mu.Unlock()
			return fmt.Errorf("unknown write mode %q for %s", w.Mode, w.ID)
		}
		catalog.ApplyFields(&e, w.Fields)
		e.UpdatedAt = ts
		next[w.ID] = e
	}
	r.entries = next
	r.mu.Unlock()

	r.notify()
	return nil
}

func cloneEntry(e domain.CatalogEntry) domain.CatalogEntry {
	e.Aliases = cloneList(e.Aliases)
	e.Equipment = cloneList(e.Equipment)
	e.AITags = cloneList(e.AITags)
	return e
}

func cloneList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return append([]string{}, list...)
}
