package api

import (
	"bytes"
	"errors"
	"net/http"

	"sageset/web/internal/site"

	"github.com/gin-gonic/gin"
)

// SiteHandler serves the public marketing and policy pages.
type SiteHandler struct {
	site *site.Site
}

func NewSiteHandler(s *site.Site) *SiteHandler {
	return &SiteHandler{site: s}
}

func (h *SiteHandler) Page(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.site.Render(&buf, c.Request.URL.Path); err != nil {
		if errors.Is(err, site.ErrPageNotFound) {
			c.String(http.StatusNotFound, "Page not found")
			return
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Could not render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
