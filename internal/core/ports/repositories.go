package ports

import (
	"context"
	"time"

	"paybit/internal/core/domain"

	"github.com/btcsuite/btcd/btcutil"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetWalletBinding persists the custodial wallet name and the first
	// generated receiving address as authoritative for the user.
	SetWalletBinding(ctx context.Context, userID, walletName, address string) error
}

// HistoryParams holds filters, sort and pagination for the transaction feed.
// Zero values mean "unset".
type HistoryParams struct {
	Direction string // "sent", "received" or empty for both
	Type      string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time // inclusive upper bound (normalized to end of day at the HTTP edge)
	MinAmount *btcutil.Amount
	MaxAmount *btcutil.Amount
	Search    string // matched against party names, description, reference
	Sort      string // newest (default), oldest, amount-high, amount-low
	Page      int    // 1-based
	Limit     int    // clamped to [1,50], default 10
}

// HistoryPage is one page of a user's transaction feed.
type HistoryPage struct {
	Transactions []domain.TransactionView `json:"transactions"`
	Total        int64                    `json:"total"`
	Page         int                      `json:"page"`
	Limit        int                      `json:"limit"`
	Pages        int                      `json:"pages"`
}

// TransactionRepository defines persistence operations for ledger records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByNodeTxID(ctx context.Context, nodeTxID string) (*domain.Transaction, error)
	// List returns the page of records where userID is a party, plus the
	// total count matching the filters irrespective of pagination.
	List(ctx context.Context, userID string, params HistoryParams) ([]domain.Transaction, int64, error)
}

// CampaignRepository defines persistence operations for donation campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Update(ctx context.Context, c *domain.Campaign) error
	Delete(ctx context.Context, id string) error
	// IncrementCollected atomically adds delta to the running total.
	IncrementCollected(ctx context.Context, id string, delta btcutil.Amount) error
}

// ContactRepository defines persistence operations for contact lists.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	Exists(ctx context.Context, ownerID, contactID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Contact, error)
	Delete(ctx context.Context, ownerID, contactID string) error
}

// MoneyRequestRepository defines persistence operations for money requests.
type MoneyRequestRepository interface {
	Create(ctx context.Context, r *domain.MoneyRequest) error
	GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error)
	// ListForUser returns requests where the user is the payer (incoming)
	// or the requester (outgoing).
	ListForUser(ctx context.Context, userID string, incoming bool) ([]domain.MoneyRequest, error)
	MarkResolved(ctx context.Context, id string) error
	MarkDeclined(ctx context.Context, id string) error
}

// IntentRepository defines persistence for transfer intents (the durable
// write-ahead record around the external send).
type IntentRepository interface {
	Create(ctx context.Context, intent *domain.TransferIntent) error
	UpdateStatus(ctx context.Context, id string, status domain.IntentStatus, nodeTxID string) error
	// ListStalePending returns pending intents created before the cutoff.
	ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.TransferIntent, error)
}
