package service

import (
	"context"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	historyDefaultLimit = 10
	historyMaxLimit     = 50
)

// LedgerServiceImpl implements ports.LedgerService: the read side of the
// transaction ledger, re-expressed from the caller's perspective.
type LedgerServiceImpl struct {
	txRepo ports.TransactionRepository
	log    zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(txRepo ports.TransactionRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRepo: txRepo,
		log:    log.With().Str("component", "ledger_service").Logger(),
	}
}

// History returns one page of the user's feed. Limit is clamped to
// [1,50] with a default of 10; page to >= 1.
func (s *LedgerServiceImpl) History(ctx context.Context, userID string, params ports.HistoryParams) (*ports.HistoryPage, error) {
	if params.Limit <= 0 {
		params.Limit = historyDefaultLimit
	}
	if params.Limit > historyMaxLimit {
		params.Limit = historyMaxLimit
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Type != "" && !domain.IsValidTransactionType(params.Type) {
		return nil, apperror.Validation("unknown transaction type filter")
	}
	if params.Status != "" && !domain.IsValidTransactionStatus(params.Status) {
		return nil, apperror.Validation("unknown transaction status filter")
	}

	txs, total, err := s.txRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TransactionView, 0, len(txs))
	for i := range txs {
		views = append(views, txs[i].ViewFor(userID))
	}

	pages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return &ports.HistoryPage{
		Transactions: views,
		Total:        total,
		Page:         params.Page,
		Limit:        params.Limit,
		Pages:        pages,
	}, nil
}

// Details returns a single ledger row, but only to a party of it.
func (s *LedgerServiceImpl) Details(ctx context.Context, userID, txID string) (*domain.TransactionView, error) {
	tx, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if !tx.InvolvesUser(userID) {
		return nil, apperror.ErrNotAuthorized()
	}
	view := tx.ViewFor(userID)
	return &view, nil
}
