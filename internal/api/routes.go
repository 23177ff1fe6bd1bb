package api

import (
	"net/http"

	"sageset/web/internal/live"
	"sageset/web/internal/logger"
	"sageset/web/internal/service"
	"sageset/web/internal/site"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs.
type Deps struct {
	Log *logger.Logger

	AuthService     service.AuthService
	CatalogService  service.CatalogService
	MediaService    service.MediaService
	FeedbackService service.FeedbackService

	CatalogHub  *live.Hub[service.CatalogSnapshot]
	FeedbackHub *live.Hub[service.FeedbackSnapshot]

	Site *site.Site

	AllowedOrigins []string
	MaxUploadBytes int64
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	authHandler := NewAuthHandler(deps.AuthService)
	catalogHandler := NewCatalogHandler(deps.CatalogService, deps.MaxUploadBytes)
	mediaHandler := NewMediaHandler(deps.MediaService, deps.MaxUploadBytes)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackService)
	streamHandler := NewStreamHandler(deps.CatalogHub, deps.FeedbackHub)
	siteHandler := NewSiteHandler(deps.Site)

	router.Use(RequestID(), RequestLogger(deps.Log))
	if len(deps.AllowedOrigins) > 0 {
		router.Use(CORS(deps.AllowedOrigins))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// --- Public Site ---
	for _, path := range deps.Site.Paths() {
		router.GET(path, siteHandler.Page)
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// All admin routes require a valid token AND the admin claim.
	admin := apiV1.Group("/admin")
	admin.Use(AuthMiddleware(deps.AuthService), AdminMiddleware())
	{
		admin.GET("/me", authHandler.Me)

		// --- Catalog Routes ---
		catalogGroup := admin.Group("/catalog")
		{
			catalogGroup.GET("", catalogHandler.ListEntries)
			catalogGroup.POST("", catalogHandler.CreateEntry)
			catalogGroup.POST("/import", catalogHandler.ImportEntries)
			catalogGroup.POST("/seed", catalogHandler.SeedEntries)
			catalogGroup.GET("/options", catalogHandler.GetOptions)
			catalogGroup.GET("/stream", streamHandler.CatalogStream)

			catalogGroup.GET("/:id", catalogHandler.GetEntry)
			catalogGroup.PUT("/:id", catalogHandler.UpdateEntry)
			catalogGroup.DELETE("/:id", catalogHandler.DeleteEntry)

			// --- Media ---
			catalogGroup.POST("/:id/media/:kind", mediaHandler.UploadMedia)
			catalogGroup.POST("/:id/media/:kind/upload-url", mediaHandler.RequestUploadURL)
			catalogGroup.POST("/:id/media/:kind/confirm", mediaHandler.ConfirmUpload)
		}

		admin.GET("/storage/health", mediaHandler.CheckStorage)

		// --- Feedback Routes ---
		feedbackGroup := admin.Group("/feedback")
		{
			feedbackGroup.GET("", feedbackHandler.ListFeedback)
			feedbackGroup.GET("/stream", streamHandler.FeedbackStream)
			feedbackGroup.PATCH("/:id/status", feedbackHandler.UpdateStatus)
			feedbackGroup.PATCH("/:id/priority", feedbackHandler.UpdatePriority)
			feedbackGroup.POST("/:id/notes", feedbackHandler.AddNote)
		}
	}
}
