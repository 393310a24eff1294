package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	categoryCacheReady func() bool
	dbPing             func() error
}

func NewHealthHandler(categoryCacheReady func() bool, dbPing func() error) *HealthHandler {
	return &HealthHandler{
		categoryCacheReady: categoryCacheReady,
		dbPing:             dbPing,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if !h.categoryCacheReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "category cache not initialized",
		})
		return
	}

	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			attachError(c, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
