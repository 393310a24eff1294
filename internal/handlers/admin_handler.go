package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
)

// AdminHandler serves the staff dashboard: application triage, the client
// book and the payment ledger
type AdminHandler struct {
	service services.AdminServiceInterface
}

func NewAdminHandler(service services.AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	filter := models.ApplicationFilter{
		Status:     models.ApplicationStatus(c.Query("status")),
		CategoryID: queryInt(c, "category_id"),
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	}

	applications, err := h.service.ListApplications(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
}

func (h *AdminHandler) GetApplication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id", err)
		return
	}

	application, err := h.service.GetApplication(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id", err)
		return
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	application, err := h.service.UpdateApplicationStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *AdminHandler) ListClients(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context(), queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients, "count": len(clients)})
}

func (h *AdminHandler) ListPayments(c *gin.Context) {
	payments, err := h.service.ListPayments(c.Request.Context(), queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}
