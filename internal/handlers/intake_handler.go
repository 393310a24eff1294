package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
	"github.com/lexpravo/intake-api/pkg/errors"
)

// IntakeHandler exposes final submission and the client notification hook
type IntakeHandler struct {
	service services.IntakeServiceInterface
}

func NewIntakeHandler(service services.IntakeServiceInterface) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// Submit validates the complete form and persists the application.
// Validation misses answer 422 with the offending field so the Mini App
// can send the user back to the right step.
func (h *IntakeHandler) Submit(c *gin.Context) {
	key, ok := sessionKey(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing wizard session", nil)
		return
	}

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), key, &req)
	if err != nil {
		if errors.Is(err, errors.ErrValidation) {
			attachError(c, err)
			c.JSON(http.StatusUnprocessableEntity, models.SubmitResponse{
				Status: "validation_error",
				Error:  err.Error(),
			})
			return
		}
		attachError(c, err)
		status := statusForError(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "Не удалось отправить заявку. Попробуйте ещё раз."
		}
		c.JSON(status, models.SubmitResponse{Status: "error", Error: message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// NotifyClient triggers the best-effort confirmation message to a client
func (h *IntakeHandler) NotifyClient(c *gin.Context) {
	var req models.NotifyClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.NotifyClient(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
