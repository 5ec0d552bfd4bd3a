package domain

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// MoneyRequest is a standing request from one user for another to pay.
// It is resolved either by the payer paying it (which runs a transfer)
// or declining it.
type MoneyRequest struct {
	ID          string         `bson:"_id" json:"id"`
	RequesterID string         `bson:"requester_id" json:"requester_id"`
	PayerID     string         `bson:"payer_id" json:"payer_id"`
	Amount      btcutil.Amount `bson:"amount" json:"amount"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	IsResolved  bool           `bson:"is_resolved" json:"is_resolved"`
	Declined    bool           `bson:"declined" json:"declined"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
}
