package api

import (
	"net/http"
	"time"

	"sageset/web/internal/live"
	"sageset/web/internal/service"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 15 * time.Second

// StreamHandler pushes live snapshots to the console over server-sent events.
type StreamHandler struct {
	catalog  *live.Hub[service.CatalogSnapshot]
	feedback *live.Hub[service.FeedbackSnapshot]
}

func NewStreamHandler(catalog *live.Hub[service.CatalogSnapshot], feedback *live.Hub[service.FeedbackSnapshot]) *StreamHandler {
	return &StreamHandler{catalog: catalog, feedback: feedback}
}

// CatalogStream godoc
// @Summary Live catalog
// @Description Server-sent "catalog" events carrying every entry and the editor options.
// @Tags Catalog
// @Produce text/event-stream
// @Security BearerAuth
// @Router /admin/catalog/stream [get]
func (h *StreamHandler) CatalogStream(c *gin.Context) {
	streamHub(c, h.catalog, "catalog", func(s service.CatalogSnapshot) any { return s })
}

// FeedbackStream godoc
// @Summary Live feedback triage
// @Description Server-sent "feedback" events filtered by the type and status query.
// @Tags Feedback
// @Produce text/event-stream
// @Security BearerAuth
// @Param type query string false "all, bug or feature"
// @Param status query string false "open, all, addressed or closed"
// @Router /admin/feedback/stream [get]
func (h *StreamHandler) FeedbackStream(c *gin.Context) {
	filter := feedbackFilter(c)
	// Reject a bad filter before switching to a stream.
	if err := service.ValidateFilter(filter); err != nil {
		respondWithError(c, err)
		return
	}
	streamHub(c, h.feedback, "feedback", func(s service.FeedbackSnapshot) any {
		return service.FeedbackSnapshot{Items: service.FilterFeedback(s.Items, filter), Stats: s.Stats}
	})
}

// streamHub writes one event per snapshot until the client goes away.
func streamHub[T any](c *gin.Context, hub *live.Hub[T], event string, render func(T) any) {
	updates, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		case snap := <-updates:
			c.SSEvent(event, render(snap))
			c.Writer.Flush()
		}
	}
}
