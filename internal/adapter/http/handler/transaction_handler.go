package handler

import (
	"time"

	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/gin-gonic/gin"
)

// TransactionHandler serves the transaction feed.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// History handles GET /api/v1/transactions.
func (h *TransactionHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	params, err := historyParams(q)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.ledgerSvc.History(c.Request.Context(), currentUserID(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.HistoryResponse{
		Transactions: page.Transactions,
		Total:        page.Total,
		Page:         page.Page,
		Limit:        page.Limit,
		Pages:        page.Pages,
	})
}

// Details handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Details(c *gin.Context) {
	view, err := h.ledgerSvc.Details(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// historyParams converts wire-level query values into ledger parameters.
func historyParams(q dto.HistoryQuery) (ports.HistoryParams, error) {
	params := ports.HistoryParams{
		Direction: q.Direction,
		Type:      q.Type,
		Status:    q.Status,
		Search:    q.Search,
		Sort:      q.Sort,
		Page:      q.Page,
		Limit:     q.Limit,
	}

	if q.StartDate != "" {
		t, err := parseHistoryDate(q.StartDate)
		if err != nil {
			return params, apperror.Validation("start_date must be RFC 3339 or YYYY-MM-DD")
		}
		params.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := parseHistoryDate(q.EndDate)
		if err != nil {
			return params, apperror.Validation("end_date must be RFC 3339 or YYYY-MM-DD")
		}
		// The end bound is inclusive through the whole day: a bare date
		// (or midnight) means "everything up to and including that day".
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		params.EndDate = &t
	}

	if q.MinAmount != nil {
		amt, err := btcutil.NewAmount(*q.MinAmount)
		if err != nil {
			return params, apperror.ErrInvalidAmount()
		}
		params.MinAmount = &amt
	}
	if q.MaxAmount != nil {
		amt, err := btcutil.NewAmount(*q.MaxAmount)
		if err != nil {
			return params, apperror.ErrInvalidAmount()
		}
		params.MaxAmount = &amt
	}

	return params, nil
}

// parseHistoryDate accepts an RFC 3339 timestamp or a bare calendar date.
func parseHistoryDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
