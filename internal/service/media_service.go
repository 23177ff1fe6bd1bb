package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/media"
	"sageset/web/internal/repository"
	"sageset/web/internal/storage"

	"github.com/google/uuid"
)

// MediaPrefix is the object key prefix for all exercise media.
const MediaPrefix = "exercise-media"

// UploadResult reports a media upload. PosterError is set when the video was
// attached but deriving its poster failed.
type UploadResult struct {
	Entry       *domain.CatalogEntry `json:"entry"`
	Kind        domain.MediaKind     `json:"kind"`
	URL         string               `json:"url"`
	PosterURL   string               `json:"posterUrl,omitempty"`
	PosterError string               `json:"posterError,omitempty"`
}

// UploadTicket is a presigned direct upload.
type UploadTicket struct {
	UploadURL   string    `json:"uploadUrl"`
	ObjectKey   string    `json:"objectKey"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// StorageHealth is the outcome of a write/stat/delete check.
type StorageHealth struct {
	OK        bool   `json:"ok"`
	ObjectKey string `json:"objectKey"`
	LatencyMS int64  `json:"latencyMs"`
}

// --- Service Interface ---
type MediaService interface {
	Upload(ctx context.Context, entryID string, kind domain.MediaKind, filename, contentType string, body io.ReadSeeker, autoPoster bool) (*UploadResult, error)
	RequestUploadURL(ctx context.Context, entryID string, kind domain.MediaKind, filename, contentType string) (*UploadTicket, error)
	ConfirmUpload(ctx context.Context, entryID string, kind domain.MediaKind, objectKey string) (*domain.CatalogEntry, error)
	AttachMedia(ctx context.Context, entryID string, kind domain.MediaKind, url string) (*domain.CatalogEntry, error)
	CheckStorage(ctx context.Context) (*StorageHealth, error)
}

// --- Service Implementation ---

type mediaService struct {
	repo    repository.CatalogRepository
	storage storage.FileStorage
	posters media.PosterExtractor
	log     *logger.Logger
	now     func() time.Time
}

// NewMediaService wires media uploads. posters may be nil, which disables
// automatic poster extraction.
func NewMediaService(repo repository.CatalogRepository, fileStorage storage.FileStorage, posters media.PosterExtractor, log *logger.Logger) MediaService {
	return &mediaService{
		repo:    repo,
		storage: fileStorage,
		posters: posters,
		log:     log.With("service", "Media"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the file and attaches it to the entry. A video upload with
// autoPoster also derives and attaches a poster frame; that second step can
// fail on its own without undoing the video.
func (s *mediaService) Upload(ctx context.Context, entryID string, kind domain.MediaKind, filename, contentType string, body io.ReadSeeker, autoPoster bool) (*UploadResult, error) {
	// 1. The entry must exist before anything is uploaded
	if _, err := s.requireEntry(ctx, entryID); err != nil {
		return nil, err
	}
	if err := checkContentType(kind, contentType); err != nil {
		return nil, err
	}

	// 2. Upload and attach
	key := ObjectKey(entryID, kind, filename)
	url, err := s.storage.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, storageFailed(err)
	}
	entry, err := s.AttachMedia(ctx, entryID, kind, url)
	if err != nil {
		return nil, err
	}
	result := &UploadResult{Entry: entry, Kind: kind, URL: url}

	// 3. Optional poster derived from the video
	if kind != domain.MediaVideo || !autoPoster || s.posters == nil {
		return result, nil
	}
	posterURL, posterEntry, err := s.derivePoster(ctx, entryID, filename, body)
	if err != nil {
		s.log.Warn("Poster derivation failed", "entryId", entryID, "error", err)
		result.PosterError = err.Error()
		return result, nil
	}
	result.PosterURL = posterURL
	result.Entry = posterEntry
	return result, nil
}

func (s *mediaService) derivePoster(ctx context.Context, entryID, filename string, video io.ReadSeeker) (string, *domain.CatalogEntry, error) {
	if _, err := video.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("rewind video: %w", err)
	}
	frame, err := s.posters.ExtractPoster(ctx, video, path.Ext(filename))
	if err != nil {
		return "", nil, err
	}
	key := ObjectKey(entryID, domain.MediaPoster, "poster.jpg")
	url, err := s.storage.Upload(ctx, key, media.PosterContentType, bytes.NewReader(frame))
	if err != nil {
		return "", nil, storageFailed(err)
	}
	entry, err := s.AttachMedia(ctx, entryID, domain.MediaPoster, url)
	if err != nil {
		return "", nil, err
	}
	return url, entry, nil
}

// RequestUploadURL presigns a direct PUT of the media object.
func (s *mediaService) RequestUploadURL(ctx context.Context, entryID string, kind domain.MediaKind, filename, contentType string) (*UploadTicket, error) {
	if _, err := s.requireEntry(ctx, entryID); err != nil {
		return nil, err
	}
	if contentType == "" {
		return nil, validationFailed("content type is required")
	}
	if err := checkContentType(kind, contentType); err != nil {
		return nil, err
	}

	key := ObjectKey(entryID, kind, filename)
	url, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, storageFailed(err)
	}
	return &UploadTicket{
		UploadURL:   url,
		ObjectKey:   key,
		ContentType: contentType,
		ExpiresAt:   s.now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// ConfirmUpload attaches an object the client uploaded through a presigned URL.
func (s *mediaService) ConfirmUpload(ctx context.Context, entryID string, kind domain.MediaKind, objectKey string) (*domain.CatalogEntry, error) {
	if _, err := s.requireEntry(ctx, entryID); err != nil {
		return nil, err
	}
	if !ownsObjectKey(objectKey, entryID, kind) {
		return nil, validationFailed("object key %q does not belong to %s/%s", objectKey, entryID, kind)
	}
	if _, err := s.storage.Stat(ctx, objectKey); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, validationFailed("object %q has not been uploaded", objectKey)
		}
		return nil, storageFailed(err)
	}
	return s.AttachMedia(ctx, entryID, kind, s.storage.PublicURL(objectKey))
}

// AttachMedia sets the entry's URL field for kind and its updatedAt, and
// nothing else. The entry must already be saved.
func (s *mediaService) AttachMedia(ctx context.Context, entryID string, kind domain.MediaKind, url string) (*domain.CatalogEntry, error) {
	entry, err := s.requireEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	fields := catalog.Fields{kind.Field(): url}
	if err := s.repo.SetFields(ctx, entryID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPreconditionFailed, entryID)
		}
		return nil, storeUnavailable(err)
	}
	catalog.ApplyFields(entry, fields)
	entry.UpdatedAt = s.now()

	s.log.Info("Media attached", "entryId", entryID, "kind", kind, "url", url)
	return entry, nil
}

// CheckStorage writes, stats and deletes a small check object.
func (s *mediaService) CheckStorage(ctx context.Context) (*StorageHealth, error) {
	start := s.now()
	key := path.Join(MediaPrefix, "_healthcheck",
		fmt.Sprintf("admin-%s-%s.txt", start.Format("20060102T150405Z"), uuid.NewString()))

	payload := []byte("storage health check " + start.Format(time.RFC3339))
	if _, err := s.storage.Upload(ctx, key, "text/plain", bytes.NewReader(payload)); err != nil {
		return nil, storageFailed(err)
	}
	info, err := s.storage.Stat(ctx, key)
	if err != nil {
		return nil, storageFailed(err)
	}
	if info.Size != int64(len(payload)) {
		return nil, storageFailed(fmt.Errorf("check object size mismatch: wrote %d, stat %d", len(payload), info.Size))
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		return nil, storageFailed(err)
	}

	return &StorageHealth{
		OK:        true,
		ObjectKey: key,
		LatencyMS: s.now().Sub(start).Milliseconds(),
	}, nil
}

func (s *mediaService) requireEntry(ctx context.Context, entryID string) (*domain.CatalogEntry, error) {
	if strings.TrimSpace(entryID) == "" {
		return nil, fmt.Errorf("%w: entry has no id", ErrPreconditionFailed)
	}
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPreconditionFailed, entryID)
		}
		return nil, storeUnavailable(err)
	}
	return entry, nil
}

// ObjectKey is exercise-media/{id}/{kind}{ext}, with the extension taken from
// filename. Posters default to .jpg and videos to .mp4.
func ObjectKey(entryID string, kind domain.MediaKind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".mp4"
		if kind == domain.MediaPoster {
			ext = ".jpg"
		}
	}
	return path.Join(MediaPrefix, entryID, string(kind)+ext)
}

// ownsObjectKey reports whether objectKey is exactly what ObjectKey builds for
// the entry and kind, with a single alphanumeric extension.
func ownsObjectKey(objectKey, entryID string, kind domain.MediaKind) bool {
	ext := path.Ext(objectKey)
	if len(ext) < 2 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return objectKey == ObjectKey(entryID, kind, ext)
}

func checkContentType(kind domain.MediaKind, contentType string) error {
	if contentType == "" || contentType == "application/octet-stream" {
		return nil
	}
	want := "video/"
	if kind == domain.MediaPoster {
		want = "image/"
	}
	if !strings.HasPrefix(contentType, want) {
		return validationFailed("%s upload must be %s*, got %s", kind, want, contentType)
	}
	return nil
}
