package domain

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// Campaign is a donation campaign aggregate. CollectedAmount only grows
// via the donate path, after the underlying transfer succeeded, and is
// stored uncapped; the reported progress is capped at 100.
type Campaign struct {
	ID              string         `bson:"_id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	Description     string         `bson:"description" json:"description"`
	CreatorID       string         `bson:"creator_id" json:"creator_id"`
	GoalAmount      btcutil.Amount `bson:"goal_amount" json:"goal_amount"`
	CollectedAmount btcutil.Amount `bson:"collected_amount" json:"collected_amount"`
	Image           string         `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updated_at"`
}

// Progress returns the funding percentage, capped at 100.
func (c *Campaign) Progress() int {
	if c.GoalAmount <= 0 {
		return 0
	}
	p := int(c.CollectedAmount * 100 / c.GoalAmount)
	if p > 100 {
		p = 100
	}
	return p
}

// IsComplete reports whether the collected total reached the goal.
func (c *Campaign) IsComplete() bool {
	return c.GoalAmount > 0 && c.CollectedAmount >= c.GoalAmount
}
