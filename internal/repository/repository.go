package repository

import (
	"context"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CatalogRepository stores exercise catalog entries keyed by their slug id.
type CatalogRepository interface {
	// List returns every entry ordered by name.
	List(ctx context.Context) ([]domain.CatalogEntry, error)
	GetByID(ctx context.Context, id string) (*domain.CatalogEntry, error)
	// FindByNormalizedName is the authoritative duplicate-name query.
	FindByNormalizedName(ctx context.Context, nameNormalized string) ([]domain.CatalogEntry, error)
	// Insert fails with ErrDuplicateKey when the id is taken.
	Insert(ctx context.Context, entry *domain.CatalogEntry) error
	// Update rewrites the editable fields of an existing entry. Media URLs are
	// kept from the store and copied back into entry.
	Update(ctx context.Context, entry *domain.CatalogEntry) error
	// SetFields overwrites only the given fields of an existing entry.
	SetFields(ctx context.Context, id string, fields catalog.Fields) error
	Delete(ctx context.Context, id string) error
	// BatchWrite applies all writes atomically: either every write lands or none does.
	// A set write for an id that is already stored fails with ErrDuplicateKey.
	BatchWrite(ctx context.Context, writes []catalog.Write) error
}

// FeedbackRepository reads feedback items and applies admin field updates.
type FeedbackRepository interface {
	// List returns every item, newest first.
	List(ctx context.Context) ([]domain.FeedbackItem, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FeedbackItem, error)
	SetFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) error
	AppendNote(ctx context.Context, id primitive.ObjectID, note domain.FeedbackNote) error
}

// AdminRepository stores admin console accounts.
type AdminRepository interface {
	Create(ctx context.Context, user *domain.AdminUser) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
}

// Watcher signals every change to a collection. The channel is closed when ctx
// ends or the underlying subscription fails.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
