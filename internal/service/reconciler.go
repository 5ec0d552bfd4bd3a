package service

import (
	"context"
	"errors"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pending intents younger than this are likely still in flight and are
// left alone.
const intentStaleAfter = 2 * time.Minute

// Reconciler settles transfer intents left pending by crashes or
// indeterminate sends. An intent carrying a node txid proves the send
// happened: its ledger row is backfilled if missing. An intent without
// one cannot be confirmed from app state and is failed after the cutoff.
type Reconciler struct {
	intentRepo ports.IntentRepository
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	interval   time.Duration
	log        zerolog.Logger
}

// NewReconciler creates a reconciler that sweeps at the given interval.
func NewReconciler(
	intentRepo ports.IntentRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	interval time.Duration,
	log zerolog.Logger,
) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{
		intentRepo: intentRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		interval:   interval,
		log:        log.With().Str("component", "reconciler").Logger(),
	}
}

// Run sweeps periodically until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
			if err := r.Reconcile(ctx); err != nil {
				r.log.Error().Err(err).Msg("reconcile pass failed")
			}
		}
	}
}

// Reconcile performs one sweep over stale pending intents.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	stale, err := r.intentRepo.ListStalePending(ctx, time.Now().UTC().Add(-intentStaleAfter))
	if err != nil {
		return err
	}

	for i := range stale {
		intent := &stale[i]
		if err := r.settle(ctx, intent); err != nil {
			r.log.Error().Err(err).Str("intent_id", intent.ID).Msg("settling intent")
		}
	}
	return nil
}

func (r *Reconciler) settle(ctx context.Context, intent *domain.TransferIntent) error {
	if intent.NodeTxID == "" {
		// No proof the send went out. Fail it and flag for review: if
		// the node did broadcast, an operator has to repair by hand.
		r.log.Warn().Str("intent_id", intent.ID).Str("sender_id", intent.SenderID).
			Msg("stale intent without node txid, marking failed")
		return r.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusFailed, "")
	}

	// Send confirmed. Backfill the ledger row unless it already landed.
	existing, err := r.txRepo.GetByNodeTxID(ctx, intent.NodeTxID)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing == nil {
		sender, err := r.userRepo.GetByID(ctx, intent.SenderID)
		if err != nil {
			return err
		}
		receiver, err := r.userRepo.GetByID(ctx, intent.ReceiverID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		tx := &domain.Transaction{
			ID:           uuid.NewString(),
			Reference:    domain.NewReference(now),
			FromUserID:   sender.ID,
			ToUserID:     receiver.ID,
			SenderName:   sender.Fullname,
			ReceiverName: receiver.Fullname,
			Amount:       intent.Amount,
			Type:         intent.Type,
			Status:       domain.TransactionStatusCompleted,
			Description:  intent.Description,
			CampaignID:   intent.CampaignID,
			NodeTxID:     intent.NodeTxID,
			CreatedAt:    intent.CreatedAt,
			UpdatedAt:    now,
		}
		if err := r.txRepo.Create(ctx, tx); err != nil {
			return err
		}
		r.log.Info().Str("intent_id", intent.ID).Str("transaction_id", tx.ID).
			Msg("ledger row backfilled from intent")
	}

	return r.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusCompleted, intent.NodeTxID)
}

func isNotFound(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == "TXN_003"
}
