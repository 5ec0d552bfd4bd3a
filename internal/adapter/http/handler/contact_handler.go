package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContactHandler handles saved contact endpoints.
type ContactHandler struct {
	contactSvc ports.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactSvc ports.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// Add handles POST /api/v1/contacts.
func (h *ContactHandler) Add(c *gin.Context) {
	var req dto.ContactAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	view, err := h.contactSvc.Add(c.Request.Context(), currentUserID(c), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List handles GET /api/v1/contacts.
func (h *ContactHandler) List(c *gin.Context) {
	views, err := h.contactSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, views)
}

// Remove handles DELETE /api/v1/contacts/:id.
func (h *ContactHandler) Remove(c *gin.Context) {
	if err := h.contactSvc.Remove(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
