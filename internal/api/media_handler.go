package api

import (
	"net/http"
	"strconv"

	"sageset/web/internal/domain"
	"sageset/web/internal/service"

	"github.com/gin-gonic/gin"
)

// MediaHandler serves media attachment for catalog entries.
type MediaHandler struct {
	mediaService   service.MediaService
	maxUploadBytes int64
}

func NewMediaHandler(mediaService service.MediaService, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, maxUploadBytes: maxUploadBytes}
}

// --- DTOs ---

type RequestUploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// UploadMedia godoc
// @Summary Upload a video or poster for an entry
// @Description Stores the file and attaches its URL. For videos a poster frame is
// @Description extracted and attached too unless autoPoster=false.
// @Tags Media
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Param kind path string true "video or poster"
// @Param autoPoster query bool false "Derive a poster from the video (default true)"
// @Param file formData file true "Media file"
// @Success 200 {object} service.UploadResult
// @Failure 400 {object} gin.H "Invalid kind or content type"
// @Failure 412 {object} gin.H "Entry not saved yet"
// @Failure 500 {object} gin.H "Storage error"
// @Router /admin/catalog/{id}/media/{kind} [post]
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	kind, err := domain.ParseMediaKind(c.Param("kind"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	autoPoster := true
	if raw := c.Query("autoPoster"); raw != "" {
		autoPoster, err = strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "autoPoster must be a boolean")
			return
		}
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Missing media file: "+err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read media file")
		return
	}
	defer f.Close()

	result, err := h.mediaService.Upload(c.Request.Context(), c.Param("id"), kind,
		fh.Filename, fh.Header.Get("Content-Type"), f, autoPoster)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RequestUploadURL godoc
// @Summary Request a pre-signed URL to upload media directly
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Param kind path string true "video or poster"
// @Param uploadRequest body RequestUploadURLRequest true "File name and content type"
// @Success 200 {object} service.UploadTicket
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 412 {object} gin.H "Entry not saved yet"
// @Router /admin/catalog/{id}/media/{kind}/upload-url [post]
func (h *MediaHandler) RequestUploadURL(c *gin.Context) {
	kind, err := domain.ParseMediaKind(c.Param("kind"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.mediaService.RequestUploadURL(c.Request.Context(), c.Param("id"), kind, req.FileName, req.ContentType)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmUpload godoc
// @Summary Confirm a direct upload and attach it
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Param kind path string true "video or poster"
// @Param confirmRequest body ConfirmUploadRequest true "Uploaded object key"
// @Success 200 {object} domain.CatalogEntry
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 412 {object} gin.H "Entry not saved yet"
// @Router /admin/catalog/{id}/media/{kind}/confirm [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	kind, err := domain.ParseMediaKind(c.Param("kind"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	entry, err := h.mediaService.ConfirmUpload(c.Request.Context(), c.Param("id"), kind, req.ObjectKey)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CheckStorage godoc
// @Summary Object storage round trip
// @Description Writes, stats and deletes a small check object.
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.StorageHealth
// @Failure 500 {object} gin.H "Storage error"
// @Router /admin/storage/health [get]
func (h *MediaHandler) CheckStorage(c *gin.Context) {
	health, err := h.mediaService.CheckStorage(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}
