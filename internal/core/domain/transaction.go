package domain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeDonation   TransactionType = "donation"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDeposit    TransactionType = "deposit"
)

// IsValidTransactionType reports whether s names a known type.
func IsValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TransactionTypePayment, TransactionTypeDonation, TransactionTypeRefund,
		TransactionTypeTransfer, TransactionTypeWithdrawal, TransactionTypeDeposit:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// IsValidTransactionStatus reports whether s names a known status.
func IsValidTransactionStatus(s string) bool {
	switch TransactionStatus(s) {
	case TransactionStatusPending, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusReversed:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry for one value movement
// between two users. Party names are denormalized at write time so the
// feed survives later profile edits. Amount is in satoshis.
type Transaction struct {
	ID           string            `bson:"_id" json:"id"`
	Reference    string            `bson:"reference" json:"reference"`
	FromUserID   string            `bson:"from_user_id" json:"from_user_id"`
	ToUserID     string            `bson:"to_user_id" json:"to_user_id"`
	SenderName   string            `bson:"sender_name" json:"sender_name"`
	ReceiverName string            `bson:"receiver_name" json:"receiver_name"`
	Amount       btcutil.Amount    `bson:"amount" json:"amount"`
	Type         TransactionType   `bson:"type" json:"type"`
	Status       TransactionStatus `bson:"status" json:"status"`
	Description  string            `bson:"description,omitempty" json:"description,omitempty"`
	CampaignID   *string           `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	NodeTxID     string            `bson:"node_tx_id,omitempty" json:"-"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
}

// TransactionDirection is the perspective of a history query caller.
type TransactionDirection string

const (
	DirectionSent     TransactionDirection = "sent"
	DirectionReceived TransactionDirection = "received"
)

// TransactionView is a transaction re-expressed relative to one user:
// the raw from/to pair becomes a direction plus a counterparty.
type TransactionView struct {
	ID               string               `json:"id"`
	Date             time.Time            `json:"date"`
	Direction        TransactionDirection `json:"direction"`
	CounterpartyName string               `json:"counterparty_name"`
	CounterpartyID   string               `json:"counterparty_id"`
	Amount           float64              `json:"amount"` // BTC
	Status           TransactionStatus    `json:"status"`
	Type             TransactionType      `json:"type"`
	Description      string               `json:"description,omitempty"`
	Reference        string               `json:"reference"`
	CampaignID       *string              `json:"campaign_id,omitempty"`
}

// ViewFor transforms the transaction into the caller's perspective.
func (t *Transaction) ViewFor(userID string) TransactionView {
	v := TransactionView{
		ID:          t.ID,
		Date:        t.CreatedAt,
		Amount:      t.Amount.ToBTC(),
		Status:      t.Status,
		Type:        t.Type,
		Description: t.Description,
		Reference:   t.Reference,
		CampaignID:  t.CampaignID,
	}
	if t.FromUserID == userID {
		v.Direction = DirectionSent
		v.CounterpartyName = t.ReceiverName
		v.CounterpartyID = t.ToUserID
	} else {
		v.Direction = DirectionReceived
		v.CounterpartyName = t.SenderName
		v.CounterpartyID = t.FromUserID
	}
	return v
}

// InvolvesUser reports whether userID is a party to the transaction.
func (t *Transaction) InvolvesUser(userID string) bool {
	return t.FromUserID == userID || t.ToUserID == userID
}

// NewReference generates a ledger reference of the form TX-YYYYMMDD-####.
// References are informational and may collide; the primary key is the
// transaction id.
func NewReference(now time.Time) string {
	var b [2]byte
	_, _ = rand.Read(b[:])
	n := binary.BigEndian.Uint16(b[:]) % 10000
	return fmt.Sprintf("TX-%s-%04d", now.Format("20060102"), n)
}
