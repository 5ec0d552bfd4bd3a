package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService. Every money
// movement funnels through here: P2P payments, donations and money
// request settlements.
//
// Sends from one wallet are serialized with an in-process mutex keyed by
// sender wallet, so two concurrent transfers cannot double-spend the same
// UTXO set mid-flight. A durable intent is written before the node send
// and promoted after the ledger row lands; a crash in between leaves a
// pending intent for the reconciler.
type TransferServiceImpl struct {
	node        ports.NodeClient
	userRepo    ports.UserRepository
	txRepo      ports.TransactionRepository
	intentRepo  ports.IntentRepository
	provisioner ports.WalletProvisioner
	cache       ports.BalanceCache
	params      *chaincfg.Params
	log         zerolog.Logger

	mu      sync.Mutex
	senders map[string]*sync.Mutex
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	node ports.NodeClient,
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	intentRepo ports.IntentRepository,
	provisioner ports.WalletProvisioner,
	cache ports.BalanceCache,
	params *chaincfg.Params,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		node:        node,
		userRepo:    userRepo,
		txRepo:      txRepo,
		intentRepo:  intentRepo,
		provisioner: provisioner,
		cache:       cache,
		params:      params,
		log:         log.With().Str("component", "transfer_service").Logger(),
		senders:     make(map[string]*sync.Mutex),
	}
}

func (s *TransferServiceImpl) senderLock(wallet string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.senders[wallet]
	if !ok {
		l = &sync.Mutex{}
		s.senders[wallet] = l
	}
	return l
}

// Transfer moves funds between two users and records the movement in the
// ledger. The returned transaction is the completed ledger row.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.SenderID == req.ReceiverID {
		return nil, apperror.ErrSelfTransfer()
	}
	if !domain.IsValidTransactionType(string(req.Type)) {
		return nil, apperror.Validation(fmt.Sprintf("unknown transaction type %q", req.Type))
	}

	sender, err := s.userRepo.GetByID(ctx, req.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.userRepo.GetByID(ctx, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	// The receiver's address comes from the stored record only. Minting
	// one here would paper over a half-registered account right before
	// an irreversible send.
	recvAddr := receiver.ReceiveAddress
	if recvAddr == "" {
		return nil, apperror.ErrAddressNotProvisioned(receiver.Fullname)
	}
	if err := domain.ValidateReceiveAddress(recvAddr, s.params); err != nil {
		return nil, apperror.ErrInvalidReceiverAddress(recvAddr)
	}

	// The lock must cover EnsureWallet too: the post-send unload below
	// would otherwise pull the wallet out from under a queued sender.
	lock := s.senderLock(domain.WalletNameFor(sender.ID))
	lock.Lock()
	defer lock.Unlock()

	senderWallet, err := s.provisioner.EnsureWallet(ctx, sender)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	intent := &domain.TransferIntent{
		ID:              uuid.NewString(),
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		ReceiverAddress: recvAddr,
		Amount:          req.Amount,
		Type:            req.Type,
		Description:     req.Description,
		CampaignID:      req.CampaignID,
		Status:          domain.IntentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	txid, err := s.node.SendToAddress(ctx, senderWallet, recvAddr, req.Amount)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "WAL_006" {
			// Outcome unknown: the intent stays pending for the
			// reconciler, which settles it against the node.
			s.log.Warn().Str("intent_id", intent.ID).Msg("send outcome indeterminate")
			return nil, err
		}
		if failErr := s.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusFailed, ""); failErr != nil {
			s.log.Error().Err(failErr).Str("intent_id", intent.ID).Msg("marking intent failed")
		}
		return nil, err
	}

	tx := s.buildLedgerRow(intent, sender, receiver, txid, time.Now().UTC())
	if err := s.txRepo.Create(ctx, tx); err != nil {
		// Funds moved but the ledger write failed. Attach the txid to
		// the still-pending intent so the reconciler can record it.
		s.log.Error().Err(err).Str("intent_id", intent.ID).Str("node_txid", txid).
			Msg("ledger write failed after send")
		if updErr := s.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusPending, txid); updErr != nil {
			s.log.Error().Err(updErr).Str("intent_id", intent.ID).Msg("recording node txid on intent")
		}
		return nil, err
	}

	if err := s.intentRepo.UpdateStatus(ctx, intent.ID, domain.IntentStatusCompleted, txid); err != nil {
		s.log.Error().Err(err).Str("intent_id", intent.ID).Msg("promoting intent")
	}

	s.invalidateBalances(ctx, sender.ID, receiver.ID)

	// Keep the node's loaded-wallet set small; reload is cheap.
	if err := s.node.UnloadWallet(ctx, senderWallet); err != nil {
		s.log.Debug().Err(err).Str("wallet", senderWallet).Msg("unload after send")
	}

	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("from", sender.ID).
		Str("to", receiver.ID).
		Str("type", string(tx.Type)).
		Float64("amount_btc", tx.Amount.ToBTC()).
		Msg("transfer completed")

	return &ports.TransferResult{Transaction: tx, NodeTxID: txid}, nil
}

func (s *TransferServiceImpl) buildLedgerRow(intent *domain.TransferIntent, sender, receiver *domain.User, txid string, now time.Time) *domain.Transaction {
	return &domain.Transaction{
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
		NodeTxID:     txid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *TransferServiceImpl) invalidateBalances(ctx context.Context, userIDs ...string) {
	for _, id := range userIDs {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log.Debug().Err(err).Str("user_id", id).Msg("balance cache invalidation failed")
		}
	}
}
