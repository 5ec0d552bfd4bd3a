package dto

import (
	"testing"

	"paybit/internal/core/domain"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Fullname: "  Alice Nguyen  ",
		Email:    " alice@example.com ",
		Password: "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Alice Nguyen", req.Fullname)
	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := TransferRequest{
		ReceiverID:  "user-b",
		Amount:      1,
		Description: "thanks <script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Description, "&lt;script&gt;")
	assert.NotContains(t, req.Description, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"user-001",
		"USER_002",
		"a.b.c",
		"simple123",
		"550e8400-e29b-41d4-a716-446655440000",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"has space",
		"semi;colon",
		"slash/attack",
		"<script>",
		"quote'id",
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

// --- Amount parsing tests ---

func TestParseAmount(t *testing.T) {
	amt, err := ParseAmount(0.5)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(50_000_000), amt)

	amt, err = ParseAmount(0.00000001)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(1), amt)
}

// --- Mapping tests ---

func TestNewCampaignResponse_Progress(t *testing.T) {
	goal, _ := btcutil.NewAmount(10)
	collected, _ := btcutil.NewAmount(2.5)
	resp := NewCampaignResponse(&domain.Campaign{
		ID:              "camp-1",
		Name:            "Save the Reef",
		GoalAmount:      goal,
		CollectedAmount: collected,
	})

	assert.Equal(t, 10.0, resp.GoalAmount)
	assert.Equal(t, 2.5, resp.CollectedAmount)
	assert.Equal(t, 25, resp.Progress)
	assert.False(t, resp.IsComplete)
}
