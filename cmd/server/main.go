package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sageset/web/internal/api"
	"sageset/web/internal/app"
	"sageset/web/internal/config"
	"sageset/web/internal/live"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"
	"sageset/web/internal/service"
	"sageset/web/internal/site"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Poll interval for live views when the store cannot stream changes.
const pollInterval = 10 * time.Second

// @title SageSet Admin API
// @version 1.0
// @description Exercise catalog and feedback administration for SageSet Fitness.
// @contact.name SageSet Support
// @contact.email support@sagesetfitness.com
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting SageSet web server", "address", cfg.Server.Address, "database", cfg.Database.Driver, "storage", cfg.Storage.Driver)

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Backends ---
	stores, err := app.OpenStores(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Could not open database", "error", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Failed to disconnect database", "error", err)
		}
	}()

	fileStorage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Could not initialize object storage", "error", err)
	}

	pages, err := site.New()
	if err != nil {
		log.Fatal("Could not render site pages", "error", err)
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(stores.Admins, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(stores.Catalog, log)
	mediaService := service.NewMediaService(stores.Catalog, fileStorage, app.PosterExtractor(cfg.Media, log), log)
	feedbackService := service.NewFeedbackService(stores.Feedback, log)

	catalogHub := live.NewHub(catalogService.Snapshot, log.With("hub", "catalog"))
	feedbackHub := live.NewHub(feedbackService.Snapshot, log.With("hub", "feedback"))

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Deps{
		Log:             log,
		AuthService:     authService,
		CatalogService:  catalogService,
		MediaService:    mediaService,
		FeedbackService: feedbackService,
		CatalogHub:      catalogHub,
		FeedbackHub:     feedbackHub,
		Site:            pages,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxUploadBytes:  cfg.Media.MaxUploadBytes,
	})

	// No WriteTimeout: event streams stay open.
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	// Requests inherit gctx so open event streams end on shutdown.
	server.BaseContext = func(net.Listener) context.Context { return gctx }
	g.Go(func() error { return runHub(gctx, catalogHub, stores.Catalog, log) })
	g.Go(func() error { return runHub(gctx, feedbackHub, stores.Feedback, log) })
	g.Go(func() error {
		log.Info("Server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
		return
	}
	log.Info("Server exiting.")
}

// runHub keeps hub current from the store's change feed, falling back to
// polling when the store cannot provide one (e.g. a standalone mongod). A feed
// that closes early is reopened.
func runHub[T any](ctx context.Context, hub *live.Hub[T], store repository.Watcher, log *logger.Logger) error {
	for {
		changes, err := store.Watch(ctx)
		if err != nil {
			log.Warn("Change feed unavailable, polling instead", "interval", pollInterval, "error", err)
			changes = live.Ticker(ctx, pollInterval)
		}
		if err := hub.Run(ctx, changes); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
			log.Warn("Change feed closed, reopening")
		}
	}
}
