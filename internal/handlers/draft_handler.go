package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
)

// DraftHandler exposes the wizard draft lifecycle: restore, autosave,
// step transitions and file staging
type DraftHandler struct {
	service services.WizardServiceInterface
}

func NewDraftHandler(service services.WizardServiceInterface) *DraftHandler {
	return &DraftHandler{service: service}
}

// GetDraft restores the stored snapshot, or returns a fresh wizard state
func (h *DraftHandler) GetDraft(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	c.JSON(http.StatusOK, h.service.GetDraft(c.Request.Context(), key))
}

// SaveDraft persists the submitted field values as the current snapshot
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	var draft models.ApplicationDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.SaveDraft(c.Request.Context(), key, &draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteDraft discards the stored snapshot
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	h.service.Reset(c.Request.Context(), key)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Advance validates the current step and moves the wizard forward
func (h *DraftHandler) Advance(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	resp, stepErr := h.service.Advance(c.Request.Context(), key)
	if stepErr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"field":   stepErr.Field,
			"message": stepErr.Message,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Retreat moves the wizard one step back
func (h *DraftHandler) Retreat(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	resp, err := h.service.Retreat(c.Request.Context(), key)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StageFiles accepts a file selection for the current draft. Per-file
// rejections come back alongside the accepted files with a 200; the
// request only fails when nothing could be processed at all.
func (h *DraftHandler) StageFiles(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	var req struct {
		Files []models.FileUpload `json:"files" binding:"required,max=5,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	result, err := h.service.StageFiles(c.Request.Context(), key, req.Files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveFile detaches a staged file from the draft
func (h *DraftHandler) RemoveFile(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	resp, err := h.service.RemoveFile(c.Request.Context(), key, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
