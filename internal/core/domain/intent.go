package domain

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// IntentStatus is the lifecycle state of a transfer intent.
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusCompleted IntentStatus = "completed"
	IntentStatusFailed    IntentStatus = "failed"
)

// TransferIntent is the durable write-ahead record for an external send.
// It is written before sendtoaddress and promoted after the ledger row
// lands, so a crash between the two leaves evidence for the reconciler
// instead of silently losing the movement.
type TransferIntent struct {
	ID              string          `bson:"_id" json:"id"`
	SenderID        string          `bson:"sender_id" json:"sender_id"`
	ReceiverID      string          `bson:"receiver_id" json:"receiver_id"`
	ReceiverAddress string          `bson:"receiver_address" json:"receiver_address"`
	Amount          btcutil.Amount  `bson:"amount" json:"amount"`
	Type            TransactionType `bson:"type" json:"type"`
	Description     string          `bson:"description,omitempty" json:"description,omitempty"`
	CampaignID      *string         `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	Status          IntentStatus    `bson:"status" json:"status"`
	NodeTxID        string          `bson:"node_tx_id,omitempty" json:"node_tx_id,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
}
