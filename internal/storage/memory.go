package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process. It backs the "memory" storage driver
// and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	base    string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

var _ FileStorage = (*MemoryStorage)(nil)

// NewMemoryStorage serves public URLs under baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		base:    strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, objectKey string, contentType string, body io.ReadSeeker) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.Put(objectKey, contentType, data)
	return m.PublicURL(objectKey), nil
}

// Put stores data directly, standing in for a client-side presigned upload.
func (m *MemoryStorage) Put(objectKey, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = memoryObject{data: data, contentType: contentType, modified: time.Now().UTC()}
}

// Object returns the stored bytes and content type.
func (m *MemoryStorage) Object(objectKey string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectKey]
	return obj.data, obj.contentType, ok
}

func (m *MemoryStorage) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectKey]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &ObjectInfo{
		Key:          objectKey,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}, nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}

func (m *MemoryStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return fmt.Sprintf("%s/%s?expires=%d", m.base, objectKey, int(expires.Seconds())), nil
}

func (m *MemoryStorage) PublicURL(objectKey string) string {
	return m.base + "/" + strings.TrimLeft(objectKey, "/")
}
