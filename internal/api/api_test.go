package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/live"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository/memory"
	"sageset/web/internal/service"
	"sageset/web/internal/site"
	"sageset/web/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "ops@sagesetfitness.com"
	adminPassword = "correct horse"
)

type harness struct {
	router   *gin.Engine
	token    string
	catalog  *memory.CatalogRepository
	feedback *memory.FeedbackRepository
	admins   *memory.AdminRepository
	files    *storage.MemoryStorage
	deps     Deps
}

func newHarness(t *testing.T, entries ...domain.CatalogEntry) *harness {
	t.Helper()
	return buildHarness(t, entries, nil)
}

func newFeedbackHarness(t *testing.T, items ...domain.FeedbackItem) *harness {
	t.Helper()
	return buildHarness(t, nil, items)
}

func buildHarness(t *testing.T, entries []domain.CatalogEntry, items []domain.FeedbackItem) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	h := &harness{
		catalog:  memory.NewCatalogRepository(entries...),
		feedback: memory.NewFeedbackRepository(items...),
		admins:   memory.NewAdminRepository(),
		files:    storage.NewMemoryStorage("https://cdn.test"),
	}

	authService := service.NewAuthService(h.admins, "test-secret", time.Hour)
	catalogService := service.NewCatalogService(h.catalog, log)
	feedbackService := service.NewFeedbackService(h.feedback, log)
	pages, err := site.New()
	require.NoError(t, err)

	h.deps = Deps{
		Log:             log,
		AuthService:     authService,
		CatalogService:  catalogService,
		MediaService:    service.NewMediaService(h.catalog, h.files, nil, log),
		FeedbackService: feedbackService,
		CatalogHub:      live.NewHub(catalogService.Snapshot, log),
		FeedbackHub:     live.NewHub(feedbackService.Snapshot, log),
		Site:            pages,
		AllowedOrigins:  []string{"http://localhost:5173"},
		MaxUploadBytes:  1 << 20,
	}
	h.router = gin.New()
	SetupRoutes(h.router, h.deps)

	ctx := context.Background()
	_, err = authService.CreateAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	h.token, _, err = authService.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	return h
}

// do sends an authenticated JSON request.
func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// upload sends an authenticated multipart request with one "file" part.
func (h *harness) upload(path, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// viewerToken is a valid token without the admin claim.
func viewerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   "6650f0c2a1b2c3d4e5f60718",
		"email": "viewer@sagesetfitness.com",
		"admin": false,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func entry(id, name, muscle string) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:             id,
		Name:           name,
		NameNormalized: catalog.NormalizeName(name),
		PrimaryMuscle:  domain.StringOrNil(muscle),
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
