package service

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/repository/memory"
)

var errBackend = errors.New("backend unreachable")

// flakyCatalog fails the batch commit (and optionally listing) on demand.
type flakyCatalog struct {
	*memory.CatalogRepository
	failBatch   bool
	failList    bool
	batchWrites atomic.Int32
}

func (f *flakyCatalog) BatchWrite(ctx context.Context, writes []catalog.Write) error {
	f.batchWrites.Add(1)
	if f.failBatch {
		return errBackend
	}
	return f.CatalogRepository.BatchWrite(ctx, writes)
}

func (f *flakyCatalog) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	if f.failList {
		return nil, errBackend
	}
	return f.CatalogRepository.List(ctx)
}

// staleCatalog lists a snapshot that lacks the hidden ids while the store
// itself still holds them, as when another session wrote after the read.
type staleCatalog struct {
	*memory.CatalogRepository
	hidden  map[string]bool
	inserts atomic.Int32
	updates atomic.Int32
}

func (f *staleCatalog) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries, err := f.CatalogRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := entries[:0]
	for _, e := range entries {
		if !f.hidden[e.ID] {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

func (f *staleCatalog) Insert(ctx context.Context, e *domain.CatalogEntry) error {
	f.inserts.Add(1)
	return f.CatalogRepository.Insert(ctx, e)
}

func (f *staleCatalog) Update(ctx context.Context, e *domain.CatalogEntry) error {
	f.updates.Add(1)
	return f.CatalogRepository.Update(ctx, e)
}

// racingCatalog attaches a video right before each edit reaches the store.
type racingCatalog struct {
	*memory.CatalogRepository
	videoURL string
}

func (f *racingCatalog) Update(ctx context.Context, e *domain.CatalogEntry) error {
	if err := f.CatalogRepository.SetFields(ctx, e.ID, catalog.Fields{domain.FieldVideoURL: f.videoURL}); err != nil {
		return err
	}
	return f.CatalogRepository.Update(ctx, e)
}

type fakeExtractor struct {
	frame []byte
	err   error
	got   []byte
}

func (f *fakeExtractor) ExtractPoster(ctx context.Context, video io.Reader, ext string) ([]byte, error) {
	f.got, _ = io.ReadAll(video)
	return f.frame, f.err
}

func entry(id, name string) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:             id,
		Name:           name,
		NameNormalized: catalog.NormalizeName(name),
		Aliases:        []string{},
		Equipment:      []string{},
		AITags:         []string{},
	}
}
