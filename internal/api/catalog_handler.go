// internal/api/catalog_handler.go
package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"sageset/web/internal/catalog"
	"sageset/web/internal/domain"
	"sageset/web/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	maxUploadBytes int64
}

func NewCatalogHandler(catalogService service.CatalogService, maxUploadBytes int64) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, maxUploadBytes: maxUploadBytes}
}

// --- DTOs ---

// ProgressEvent is one phase transition of a batch.
type ProgressEvent struct {
	Phase   service.Phase `json:"phase"`
	Percent int           `json:"percent"`
	Message string        `json:"message,omitempty"`
}

// BatchResponse is returned by import and seed.
type BatchResponse struct {
	Summary catalog.Summary `json:"summary"`
	Message string          `json:"message"`
	Phases  []ProgressEvent `json:"phases"`
}

// --- Handler Methods ---

// ListEntries godoc
// @Summary List catalog entries
// @Description Returns every entry sorted by name, optionally filtered by a search term.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search term (name, id or alias)"
// @Success 200 {array} domain.CatalogEntry
// @Failure 503 {object} gin.H "Store unavailable"
// @Router /admin/catalog [get]
func (h *CatalogHandler) ListEntries(c *gin.Context) {
	entries, err := h.catalogService.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.CatalogEntry{} // Return empty JSON array, not null
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry godoc
// @Summary Get one catalog entry
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Success 200 {object} domain.CatalogEntry
// @Failure 404 {object} gin.H "Entry not found"
// @Router /admin/catalog/{id} [get]
func (h *CatalogHandler) GetEntry(c *gin.Context) {
	entry, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateEntry godoc
// @Summary Create a catalog entry
// @Description Creates an entry. The id defaults to a unique slug of the name.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body service.EntryInput true "Entry fields"
// @Success 201 {object} domain.CatalogEntry
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "Duplicate name or id"
// @Failure 503 {object} gin.H "Store unavailable"
// @Router /admin/catalog [post]
func (h *CatalogHandler) CreateEntry(c *gin.Context) {
	var req service.EntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry godoc
// @Summary Update a catalog entry
// @Description Replaces the editable fields of an entry. The id never changes.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Param entry body service.EntryInput true "Entry fields"
// @Success 200 {object} domain.CatalogEntry
// @Failure 400 {object} gin.H "Validation error"
// @Failure 404 {object} gin.H "Entry not found"
// @Failure 409 {object} gin.H "Duplicate name"
// @Router /admin/catalog/{id} [put]
func (h *CatalogHandler) UpdateEntry(c *gin.Context) {
	var req service.EntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.catalogService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Delete a catalog entry
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Entry not found"
// @Router /admin/catalog/{id} [delete]
func (h *CatalogHandler) DeleteEntry(c *gin.Context) {
	if err := h.catalogService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportEntries godoc
// @Summary Import catalog entries
// @Description Reconciles a JSON array of exercises against the catalog and commits it atomically.
// @Description Send the file as multipart field "file" or as the raw request body.
// @Tags Catalog
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file false "Import file"
// @Success 200 {object} BatchResponse
// @Failure 400 {object} gin.H "Invalid format or parse error"
// @Failure 503 {object} gin.H "Store unavailable, nothing was written"
// @Router /admin/catalog/import [post]
func (h *CatalogHandler) ImportEntries(c *gin.Context) {
	data, err := h.readImport(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var phases []ProgressEvent
	summary, err := h.catalogService.Import(c.Request.Context(), data, collectPhases(&phases))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, BatchResponse{Summary: summary, Message: summary.Message(), Phases: phases})
}

// SeedEntries godoc
// @Summary Seed the built-in exercises
// @Description Adds every built-in exercise whose name is not already in the catalog.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BatchResponse
// @Failure 503 {object} gin.H "Store unavailable, nothing was written"
// @Router /admin/catalog/seed [post]
func (h *CatalogHandler) SeedEntries(c *gin.Context) {
	var phases []ProgressEvent
	summary, err := h.catalogService.Seed(c.Request.Context(), collectPhases(&phases))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, BatchResponse{Summary: summary, Message: summary.Message(), Phases: phases})
}

// GetOptions godoc
// @Summary Editor dropdown options
// @Description Muscles, difficulties and movement patterns from the built-in set plus the catalog.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} catalog.Options
// @Router /admin/catalog/options [get]
func (h *CatalogHandler) GetOptions(c *gin.Context) {
	opts, err := h.catalogService.Options(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// readImport returns the uploaded file, or the raw body when the request is
// not multipart.
func (h *CatalogHandler) readImport(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing import file: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read import body: %w", err)
	}
	return data, nil
}

func collectPhases(out *[]ProgressEvent) service.ProgressFunc {
	return func(phase service.Phase, percent int, message string) {
		*out = append(*out, ProgressEvent{Phase: phase, Percent: percent, Message: message})
	}
}
