package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles peer-to-peer transfer endpoints.
type TransferHandler struct {
	transferSvc ports.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// Send handles POST /api/v1/transfers.
func (h *TransferHandler) Send(c *gin.Context) {
	var req dto.TransferRequest
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

	txType := req.Type
	if txType == "" {
		txType = string(domain.TransactionTypeTransfer)
	}

	senderID := currentUserID(c)
	result, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderID:    senderID,
		ReceiverID:  req.ReceiverID,
		Amount:      amount,
		Type:        domain.TransactionType(txType),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result.Transaction.ViewFor(senderID))
}
