package service

import (
	"context"
	"strings"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestServiceImpl implements ports.RequestService.
type RequestServiceImpl struct {
	requestRepo ports.MoneyRequestRepository
	userRepo    ports.UserRepository
	transferSvc ports.TransferService
	log         zerolog.Logger
}

// NewRequestService creates a new RequestServiceImpl.
func NewRequestService(
	requestRepo ports.MoneyRequestRepository,
	userRepo ports.UserRepository,
	transferSvc ports.TransferService,
	log zerolog.Logger,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		transferSvc: transferSvc,
		log:         log.With().Str("component", "request_service").Logger(),
	}
}

// Create asks the user behind payerEmail for a payment.
func (s *RequestServiceImpl) Create(ctx context.Context, requesterID, payerEmail string, amount btcutil.Amount, description string) (*domain.MoneyRequest, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	payer, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(payerEmail)))
	if err != nil {
		return nil, err
	}
	if payer.ID == requesterID {
		return nil, apperror.ErrSelfTransfer()
	}

	now := time.Now().UTC()
	req := &domain.MoneyRequest{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		PayerID:     payer.ID,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", req.ID).Str("payer_id", payer.ID).Msg("money request created")
	return req, nil
}

func (s *RequestServiceImpl) ListForUser(ctx context.Context, userID string, incoming bool) ([]domain.MoneyRequest, error) {
	return s.requestRepo.ListForUser(ctx, userID, incoming)
}

// Pay settles the request: the payer transfers the requested amount to
// the requester, then the request resolves.
func (s *RequestServiceImpl) Pay(ctx context.Context, payerID, requestID string) (*ports.TransferResult, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.PayerID != payerID {
		return nil, apperror.ErrNotAuthorized()
	}
	if req.IsResolved {
		return nil, apperror.ErrRequestResolved()
	}

	result, err := s.transferSvc.Transfer(ctx, ports.TransferRequest{
		SenderID:    payerID,
		ReceiverID:  req.RequesterID,
		Amount:      req.Amount,
		Type:        domain.TransactionTypePayment,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.MarkResolved(ctx, requestID); err != nil {
		// Payment went through; the request just failed to flip.
		s.log.Error().Err(err).Str("request_id", requestID).Msg("resolving paid request")
	}
	return result, nil
}

// Decline resolves the request without paying.
func (s *RequestServiceImpl) Decline(ctx context.Context, payerID, requestID string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.PayerID != payerID {
		return apperror.ErrNotAuthorized()
	}
	return s.requestRepo.MarkDeclined(ctx, requestID)
}
