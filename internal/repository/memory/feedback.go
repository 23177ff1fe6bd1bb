package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sageset/web/internal/domain"
	"sageset/web/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackRepository keeps feedback items in memory.
type FeedbackRepository struct {
	notifier
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.FeedbackItem
}

var _ repository.FeedbackRepository = (*FeedbackRepository)(nil)

func NewFeedbackRepository(items ...domain.FeedbackItem) *FeedbackRepository {
	r := &FeedbackRepository{items: make(map[primitive.ObjectID]domain.FeedbackItem, len(items))}
	for _, it := range items {
		if it.ID.IsZero() {
			it.ID = primitive.NewObjectID()
		}
		r.items[it.ID] = cloneItem(it)
	}
	return r
}

func (r *FeedbackRepository) List(ctx context.Context) ([]domain.FeedbackItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FeedbackItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FeedbackItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	it = cloneItem(it)
	return &it, nil
}

// SetFields understands the triage fields the admin console edits.
func (r *FeedbackRepository) SetFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	return r.mutate(id, func(it *domain.FeedbackItem) {
		for k, v := range fields {
			switch k {
			case "status":
				it.Status, _ = v.(domain.FeedbackStatus)
			case "priority":
				it.Priority, _ = v.(domain.FeedbackPriority)
			}
		}
	})
}

func (r *FeedbackRepository) AppendNote(ctx context.Context, id primitive.ObjectID, note domain.FeedbackNote) error {
	return r.mutate(id, func(it *domain.FeedbackItem) {
		it.Notes = append(it.Notes, note)
	})
}

func (r *FeedbackRepository) mutate(id primitive.ObjectID, fn func(*domain.FeedbackItem)) error {
	r.mu.Lock()
	it, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	it = cloneItem(it)
	fn(&it)
	it.UpdatedAt = time.Now().UTC()
	r.items[id] = it
	r.mu.Unlock()

	r.notify()
	return nil
}

func cloneItem(it domain.FeedbackItem) domain.FeedbackItem {
	it.Notes = append([]domain.FeedbackNote(nil), it.Notes...)
	return it
}
