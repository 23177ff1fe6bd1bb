package api

import (
	"net/http"

	"sageset/web/internal/domain"
	"sageset/web/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// --- DTOs ---

type UpdateStatusRequest struct {
	Status domain.FeedbackStatus `json:"status" binding:"required"`
}

type UpdatePriorityRequest struct {
	Priority domain.FeedbackPriority `json:"priority" binding:"required"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- Handler Methods ---

// ListFeedback godoc
// @Summary List feedback for triage
// @Description Newest first. Stats are counted over all feedback.
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param type query string false "all, bug or feature" default(all)
// @Param status query string false "open, all, addressed or closed" default(open)
// @Success 200 {object} service.FeedbackSnapshot
// @Failure 400 {object} gin.H "Unknown filter value"
// @Router /admin/feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	snap, err := h.feedbackService.List(c.Request.Context(), feedbackFilter(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if snap.Items == nil {
		snap.Items = []domain.FeedbackItem{}
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateStatus godoc
// @Summary Set the triage status of a feedback item
// @Tags Feedback
// @Accept json
// @Security BearerAuth
// @Param id path string true "Feedback ObjectID Hex"
// @Param body body UpdateStatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 400 {object} gin.H "Unknown status"
// @Failure 404 {object} gin.H "Feedback not found"
// @Router /admin/feedback/{id}/status [patch]
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := h.feedbackService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePriority godoc
// @Summary Set the priority of a feedback item
// @Tags Feedback
// @Accept json
// @Security BearerAuth
// @Param id path string true "Feedback ObjectID Hex"
// @Param body body UpdatePriorityRequest true "New priority"
// @Success 204 "Updated"
// @Failure 400 {object} gin.H "Unknown priority"
// @Failure 404 {object} gin.H "Feedback not found"
// @Router /admin/feedback/{id}/priority [patch]
func (h *FeedbackHandler) UpdatePriority(c *gin.Context) {
	var req UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := h.feedbackService.UpdatePriority(c.Request.Context(), c.Param("id"), req.Priority); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddNote godoc
// @Summary Append an internal note to a feedback item
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feedback ObjectID Hex"
// @Param body body AddNoteRequest true "Note text"
// @Success 201 {object} domain.FeedbackNote
// @Failure 400 {object} gin.H "Empty note"
// @Failure 404 {object} gin.H "Feedback not found"
// @Router /admin/feedback/{id}/notes [post]
func (h *FeedbackHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	cred, err := getCredentialFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify administrator from token.")
		return
	}

	note, err := h.feedbackService.AddNote(c.Request.Context(), c.Param("id"), req.Text, cred.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func feedbackFilter(c *gin.Context) service.FeedbackFilter {
	return service.FeedbackFilter{Type: c.Query("type"), Status: c.Query("status")}
}
