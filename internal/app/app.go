// Package app opens the backends selected by configuration. The server and
// the catalogctl tool share it so both talk to the same stores.
package app

import (
	"context"
	"fmt"

	"sageset/web/internal/config"
	"sageset/web/internal/logger"
	"sageset/web/internal/media"
	"sageset/web/internal/repository"
	"sageset/web/internal/repository/memory"
	"sageset/web/internal/repository/mongo"
	"sageset/web/internal/storage"
)

// CatalogStore is a catalog repository that can also report changes.
type CatalogStore interface {
	repository.CatalogRepository
	repository.Watcher
}

// FeedbackStore is a feedback repository that can also report changes.
type FeedbackStore interface {
	repository.FeedbackRepository
	repository.Watcher
}

// Stores are the document repositories. Close releases the connection.
type Stores struct {
	Catalog  CatalogStore
	Feedback FeedbackStore
	Admins   repository.AdminRepository

	close func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores connects the configured database driver and ensures its indexes.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*Stores, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("Using in-memory database; data is lost on exit")
		return &Stores{
			Catalog:  memory.NewCatalogRepository(),
			Feedback: memory.NewFeedbackRepository(),
			Admins:   memory.NewAdminRepository(),
		}, nil

	case "mongo", "":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info("Database connection established", "database", cfg.Name)
		return &Stores{
			Catalog:  mongo.NewMongoCatalogRepository(db, log),
			Feedback: mongo.NewMongoFeedbackRepository(db, log),
			Admins:   mongo.NewMongoAdminRepository(db),
			close:    func() error { return mongo.DisconnectDB(client) },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenStorage builds the configured object store.
func OpenStorage(ctx context.Context, cfg config.Config, log *logger.Logger) (storage.FileStorage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		base := cfg.S3.PublicBaseURL
		if base == "" {
			base = "http://localhost" + cfg.Server.Address + "/media"
		}
		log.Warn("Using in-memory object storage; uploads are lost on exit")
		return storage.NewMemoryStorage(base), nil
	case "s3", "":
		return storage.NewS3Storage(ctx, cfg.S3, log)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// PosterExtractor returns the ffmpeg extractor, or nil when the binaries are
// missing. Uploads then skip the automatic poster.
func PosterExtractor(cfg config.MediaConfig, log *logger.Logger) media.PosterExtractor {
	x := media.NewFFmpegExtractor(cfg, log)
	if err := x.AssertReady(); err != nil {
		log.Warn("Automatic video posters disabled", "error", err)
		return nil
	}
	return x
}
