package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestHandler handles money request endpoints.
type RequestHandler struct {
	requestSvc ports.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestSvc ports.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// Create handles POST /api/v1/requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var req dto.MoneyRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	created, err := h.requestSvc.Create(c.Request.Context(), currentUserID(c), req.PayerEmail, amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewMoneyRequestResponse(created))
}

// List handles GET /api/v1/requests. The direction query parameter
// selects incoming (requests to pay) or outgoing (requests made).
func (h *RequestHandler) List(c *gin.Context) {
	direction := c.DefaultQuery("direction", "incoming")
	if direction != "incoming" && direction != "outgoing" {
		response.Error(c, apperror.Validation("direction must be incoming or outgoing"))
		return
	}

	requests, err := h.requestSvc.ListForUser(c.Request.Context(), currentUserID(c), direction == "incoming")
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.MoneyRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewMoneyRequestResponse(&requests[i]))
	}
	response.OK(c, items)
}

// Pay handles POST /api/v1/requests/:id/pay.
func (h *RequestHandler) Pay(c *gin.Context) {
	payerID := currentUserID(c)
	result, err := h.requestSvc.Pay(c.Request.Context(), payerID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result.Transaction.ViewFor(payerID))
}

// Decline handles POST /api/v1/requests/:id/decline.
func (h *RequestHandler) Decline(c *gin.Context) {
	if err := h.requestSvc.Decline(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"declined": true})
}
