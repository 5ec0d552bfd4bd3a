package ports

import (
	"context"
	"errors"
	"time"

	"paybit/internal/core/domain"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrWalletMissing signals that the wallet does not exist on the node.
// Returned by NodeClient.LoadWallet so callers can fall back to creation.
var ErrWalletMissing = errors.New("wallet not found on node")

// NodeClient is the JSON-RPC surface of the Bitcoin Core node the service
// custodies wallets on. Implementations map node error codes to apperror
// values; callers never see raw RPC errors.
type NodeClient interface {
	ListWallets(ctx context.Context) ([]string, error)
	// LoadWallet loads an existing wallet. Loading a wallet that is
	// already loaded is a success.
	LoadWallet(ctx context.Context, name string) error
	// CreateWallet creates a wallet on the node. Creating a wallet that
	// already exists is a success.
	CreateWallet(ctx context.Context, name string) error
	// UnloadWallet is best effort cleanup; callers ignore its error.
	UnloadWallet(ctx context.Context, name string) error
	GetNewAddress(ctx context.Context, wallet string) (string, error)
	// GetBalance returns the confirmed balance of the wallet, or zero if
	// the wallet does not exist on the node.
	GetBalance(ctx context.Context, wallet string) (btcutil.Amount, error)
	// SendToAddress broadcasts a payment and returns the node txid.
	SendToAddress(ctx context.Context, wallet, address string, amount btcutil.Amount) (string, error)
	Ping(ctx context.Context) error
}

// WalletProvisioner guarantees a user has a loaded wallet and a persisted
// receiving address before any money movement.
type WalletProvisioner interface {
	// EnsureWallet makes sure the user's wallet exists and is loaded on
	// the node, returning the wallet name.
	EnsureWallet(ctx context.Context, user *domain.User) (string, error)
	// EnsureAddress makes sure the user has a persisted receiving
	// address, generating and storing one on first call.
	EnsureAddress(ctx context.Context, user *domain.User) (string, error)
	// Balance reports the user's confirmed on-node balance.
	Balance(ctx context.Context, user *domain.User) (btcutil.Amount, error)
}

// TransferRequest is the single input shape for every money movement:
// P2P payments, donations and money-request settlements.
type TransferRequest struct {
	SenderID    string
	ReceiverID  string
	Amount      btcutil.Amount
	Type        domain.TransactionType
	Description string
	CampaignID  *string
}

// TransferResult is the outcome of a completed transfer.
type TransferResult struct {
	Transaction *domain.Transaction
	NodeTxID    string
}

// TransferService orchestrates validated, serialized custodial transfers.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// LedgerService serves the user-facing transaction feed.
type LedgerService interface {
	History(ctx context.Context, userID string, params HistoryParams) (*HistoryPage, error)
	// Details returns a single record, only to a party of it.
	Details(ctx context.Context, userID, txID string) (*domain.TransactionView, error)
}

// DonationResult is the outcome of a campaign donation.
type DonationResult struct {
	Transaction *domain.Transaction
	Campaign    *domain.Campaign
}

// CampaignService manages donation campaigns and routes donations through
// the transfer orchestrator.
type CampaignService interface {
	Create(ctx context.Context, ownerID string, c *domain.Campaign) (*domain.Campaign, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Update(ctx context.Context, ownerID string, c *domain.Campaign) (*domain.Campaign, error)
	Delete(ctx context.Context, ownerID, id string) error
	Donate(ctx context.Context, donorID, campaignID string, amount btcutil.Amount, message string) (*DonationResult, error)
}

// ContactService manages a user's saved counterparties.
type ContactService interface {
	Add(ctx context.Context, ownerID, contactEmail string) (*domain.ContactView, error)
	List(ctx context.Context, ownerID string) ([]domain.ContactView, error)
	Remove(ctx context.Context, ownerID, contactID string) error
}

// RequestService manages money requests between users.
type RequestService interface {
	Create(ctx context.Context, requesterID, payerEmail string, amount btcutil.Amount, description string) (*domain.MoneyRequest, error)
	ListForUser(ctx context.Context, userID string, incoming bool) ([]domain.MoneyRequest, error)
	// Pay settles a request by transferring from the payer to the
	// requester, then marks it resolved.
	Pay(ctx context.Context, payerID, requestID string) (*TransferResult, error)
	Decline(ctx context.Context, payerID, requestID string) error
}

// AuthResult carries the authenticated user and their session token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, fullname, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenService issues and validates session tokens.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(token string) (*domain.Principal, error)
}

// HashService handles password hashing and verification.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// BalanceCache is a short-lived cache over node balance lookups.
type BalanceCache interface {
	Get(ctx context.Context, userID string) (btcutil.Amount, bool, error)
	Set(ctx context.Context, userID string, amount btcutil.Amount, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
