package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/middleware"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
)

// AdminAuthHandler handles staff dashboard authentication endpoints.
type AdminAuthHandler struct {
	service services.AdminAuthServiceInterface
}

func NewAdminAuthHandler(service services.AdminAuthServiceInterface) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	session, jwtToken, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		if errors.Is(err, services.ErrAdminAuthDisabled) {
			respondError(c, http.StatusServiceUnavailable, "Staff login is not available", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Error while logging in", err)
		return
	}

	middleware.SetAdminSessionCookie(
		c,
		jwtToken,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.AdminLoginResponse{
		Success: true,
		Session: session,
	})
}

func (h *AdminAuthHandler) Logout(c *gin.Context) {
	middleware.ClearAdminSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminAuthHandler) GetSession(c *gin.Context) {
	session, err := middleware.GetAdminSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}
