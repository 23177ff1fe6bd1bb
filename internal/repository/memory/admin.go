package memory

import (
	"context"
	"sync"
	"time"

	"sageset/web/internal/domain"
	"sageset/web/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminRepository keeps admin accounts keyed by email.
type AdminRepository struct {
	mu    sync.RWMutex
	users map[string]domain.AdminUser
}

var _ repository.AdminRepository = (*AdminRepository)(nil)

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{users: make(map[string]domain.AdminUser)}
}

func (r *AdminRepository) Create(ctx context.Context, user *domain.AdminUser) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return primitive.NilObjectID, repository.ErrDuplicateKey
	}
	user.ID = primitive.NewObjectID()
	ts := time.Now().UTC()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	r.users[user.Email] = *user
	return user.ID, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
