package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/services"
)

// CategoryHandler serves the practice area catalogue for the first step
type CategoryHandler struct {
	service services.CategoryServiceInterface
}

func NewCategoryHandler(service services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
