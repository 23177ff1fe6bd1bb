package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sageset/web/internal/logger"
	"sageset/web/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Constants for context keys
const (
	ContextCredentialKey = "credential"
	ContextRequestIDKey  = "requestID"

	RequestIDHeader = "X-Request-Id"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		cred, err := authService.Verify(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextCredentialKey, cred)
		c.Next()
	}
}

// AdminMiddleware rejects credentials without the admin claim.
// Must run AFTER AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := getCredentialFromContext(c)
		if err != nil {
			// This should not happen if AuthMiddleware ran correctly
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if !cred.Admin {
			abortWithError(c, http.StatusForbidden, service.ErrNotAdmin.Error())
			return
		}
		c.Next()
	}
}

// RequestID reuses an incoming X-Request-Id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request once it has been served.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"requestID", c.GetString(ContextRequestIDKey),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("Request failed", kv...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("Request rejected", kv...)
		default:
			log.Debug("Request served", kv...)
		}
	}
}

// CORS allows the admin console origins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// respondWithError maps a service error to its HTTP status. Backend failures
// carry the underlying cause in "detail" so the console can show it.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrParse),
		errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidMediaKind):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateName), errors.Is(err, service.ErrDuplicateID),
		errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPreconditionFailed):
		abortWithError(c, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, service.ErrEntryNotFound), errors.Is(err, service.ErrFeedbackNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAdmin):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrStoreUnavailable.Error(), "detail": err.Error()})
	case errors.Is(err, service.ErrStorage):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": service.ErrStorage.Error(), "detail": err.Error()})
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// Helper function to get the verified credential from context (used by handlers)
func getCredentialFromContext(c *gin.Context) (*service.Credential, error) {
	raw, exists := c.Get(ContextCredentialKey)
	if !exists {
		return nil, errors.New("credential not found in context")
	}
	cred, ok := raw.(*service.Credential)
	if !ok {
		return nil, errors.New("invalid credential type in context")
	}
	return cred, nil
}
