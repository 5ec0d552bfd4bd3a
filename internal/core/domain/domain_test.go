package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletNameFor(t *testing.T) {
	assert.Equal(t, "user_wallet_abc123", WalletNameFor("abc123"))
	// Deterministic: same input, same name.
	assert.Equal(t, WalletNameFor("u1"), WalletNameFor("u1"))
}

func TestValidateReceiveAddress(t *testing.T) {
	// Build a known-good regtest witness address from a fixed key hash.
	keyHash := make([]byte, 20)
	for i := range keyHash {
		keyHash[i] = byte(i + 1)
	}
	witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(keyHash, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	regtestAddr := witnessAddr.EncodeAddress()
	assert.True(t, len(regtestAddr) > 4 && regtestAddr[:4] == "bcrt")

	err = ValidateReceiveAddress(regtestAddr, &chaincfg.RegressionNetParams)
	assert.NoError(t, err)

	// Mainnet address must be rejected on regtest.
	err = ValidateReceiveAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", &chaincfg.RegressionNetParams)
	assert.Error(t, err)

	err = ValidateReceiveAddress("not-an-address", &chaincfg.RegressionNetParams)
	assert.Error(t, err)
}

func TestNewReference_Pattern(t *testing.T) {
	re := regexp.MustCompile(`^TX-\d{8}-\d{4}$`)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		ref := NewReference(now)
		require.Regexp(t, re, ref)
		assert.Contains(t, ref, "20260314")
	}
}

func TestTransaction_ViewFor(t *testing.T) {
	tx := &Transaction{
		ID:           "tx1",
		FromUserID:   "alice",
		ToUserID:     "bob",
		SenderName:   "Alice A",
		ReceiverName: "Bob B",
		Amount:       btcutil.Amount(25e8),
		Type:         TransactionTypeTransfer,
		Status:       TransactionStatusCompleted,
	}

	sent := tx.ViewFor("alice")
	assert.Equal(t, DirectionSent, sent.Direction)
	assert.Equal(t, "Bob B", sent.CounterpartyName)
	assert.Equal(t, "bob", sent.CounterpartyID)
	assert.Equal(t, 25.0, sent.Amount)

	recv := tx.ViewFor("bob")
	assert.Equal(t, DirectionReceived, recv.Direction)
	assert.Equal(t, "Alice A", recv.CounterpartyName)
	assert.Equal(t, "alice", recv.CounterpartyID)
}

func TestTransaction_InvolvesUser(t *testing.T) {
	tx := &Transaction{FromUserID: "a", ToUserID: "b"}
	assert.True(t, tx.InvolvesUser("a"))
	assert.True(t, tx.InvolvesUser("b"))
	assert.False(t, tx.InvolvesUser("c"))
}

func TestCampaign_Progress(t *testing.T) {
	c := &Campaign{GoalAmount: 100e8, CollectedAmount: 90e8}
	assert.Equal(t, 90, c.Progress())
	assert.False(t, c.IsComplete())

	// Overfunded: stored total stays uncapped, progress caps at 100.
	c.CollectedAmount = 110e8
	assert.Equal(t, 100, c.Progress())
	assert.True(t, c.IsComplete())
	assert.Equal(t, btcutil.Amount(110e8), c.CollectedAmount)
}

func TestCampaign_Progress_ZeroGoal(t *testing.T) {
	c := &Campaign{GoalAmount: 0, CollectedAmount: 5e8}
	assert.Equal(t, 0, c.Progress())
	assert.False(t, c.IsComplete())
}

func TestTransactionEnums(t *testing.T) {
	for _, s := range []string{"payment", "donation", "refund", "transfer", "withdrawal", "deposit"} {
		assert.True(t, IsValidTransactionType(s), s)
	}
	assert.False(t, IsValidTransactionType("gift"))

	for _, s := range []string{"pending", "completed", "failed", "reversed"} {
		assert.True(t, IsValidTransactionStatus(s), s)
	}
	assert.False(t, IsValidTransactionStatus("done"))
}
