package dto

import (
	"time"

	"paybit/internal/core/domain"

	"github.com/btcsuite/btcd/btcutil"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Fullname string `json:"fullname" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful register/login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"` // Unix timestamp
}

// UserResponse is the public profile of an account.
type UserResponse struct {
	ID             string `json:"id"`
	UID            string `json:"uid"`
	Fullname       string `json:"fullname"`
	Email          string `json:"email"`
	ProfileImage   string `json:"profile_image,omitempty"`
	ReceiveAddress string `json:"receive_address,omitempty"`
}

// TransferRequest is the request body for sending coins to another user.
// Amount is expressed in BTC.
type TransferRequest struct {
	ReceiverID  string  `json:"receiver_id" binding:"required,safe_id"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty" binding:"max=500"`
}

// CampaignCreateRequest is the request body for creating a campaign.
// GoalAmount is expressed in BTC.
type CampaignCreateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description,omitempty" binding:"max=2000"`
	GoalAmount  float64 `json:"goal_amount" binding:"required,gt=0"`
	Image       string  `json:"image,omitempty" binding:"safe_url"`
}

// CampaignUpdateRequest is the request body for editing a campaign.
type CampaignUpdateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description,omitempty" binding:"max=2000"`
	GoalAmount  float64 `json:"goal_amount" binding:"required,gt=0"`
	Image       string  `json:"image,omitempty" binding:"safe_url"`
}

// DonateRequest is the request body for donating to a campaign.
type DonateRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Message string  `json:"message,omitempty" binding:"max=500"`
}

// CampaignResponse is a campaign with derived progress fields.
type CampaignResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CreatorID       string    `json:"creator_id"`
	GoalAmount      float64   `json:"goal_amount"`
	CollectedAmount float64   `json:"collected_amount"`
	Progress        int       `json:"progress"`
	IsComplete      bool      `json:"is_complete"`
	Image           string    `json:"image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ContactAddRequest is the request body for adding a contact by email.
type ContactAddRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// MoneyRequestCreate is the request body for requesting money from
// another user. Amount is expressed in BTC.
type MoneyRequestCreate struct {
	PayerEmail  string  `json:"payer_email" binding:"required,email"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description,omitempty" binding:"max=500"`
}

// MoneyRequestResponse is a money request with its current state.
type MoneyRequestResponse struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	PayerID     string    `json:"payer_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	IsResolved  bool      `json:"is_resolved"`
	Declined    bool      `json:"declined"`
	CreatedAt   time.Time `json:"created_at"`
}

// BalanceResponse is the response for a wallet balance query.
type BalanceResponse struct {
	Balance        float64 `json:"balance"` // BTC
	ReceiveAddress string  `json:"receive_address,omitempty"`
}

// HistoryQuery holds the query parameters of a transaction history
// request. Amounts are expressed in BTC.
type HistoryQuery struct {
	Direction string   `form:"direction" binding:"omitempty,oneof=sent received"`
	Type      string   `form:"type"`
	Status    string   `form:"status"`
	StartDate string   `form:"start_date"` // RFC 3339
	EndDate   string   `form:"end_date"`   // RFC 3339
	MinAmount *float64 `form:"min_amount" binding:"omitempty,gte=0"`
	MaxAmount *float64 `form:"max_amount" binding:"omitempty,gte=0"`
	Search    string   `form:"search" binding:"max=100"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=newest oldest amount-high amount-low"`
	Page      int      `form:"page" binding:"omitempty,gte=1"`
	Limit     int      `form:"limit" binding:"omitempty,gte=1"`
}

// HistoryResponse wraps a paginated transaction feed.
type HistoryResponse struct {
	Transactions []domain.TransactionView `json:"transactions"`
	Total        int64                    `json:"total"`
	Page         int                      `json:"page"`
	Limit        int                      `json:"limit"`
	Pages        int                      `json:"pages"`
}

// DonationResponse is the response for a completed donation.
type DonationResponse struct {
	Transaction domain.TransactionView `json:"transaction"`
	Campaign    CampaignResponse       `json:"campaign"`
}

// NewUserResponse maps a domain user onto the public profile shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		UID:            u.UID,
		Fullname:       u.Fullname,
		Email:          u.Email,
		ProfileImage:   u.ProfileImage,
		ReceiveAddress: u.ReceiveAddress,
	}
}

// NewCampaignResponse maps a campaign onto its response shape.
func NewCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		CreatorID:       c.CreatorID,
		GoalAmount:      c.GoalAmount.ToBTC(),
		CollectedAmount: c.CollectedAmount.ToBTC(),
		Progress:        c.Progress(),
		IsComplete:      c.IsComplete(),
		Image:           c.Image,
		CreatedAt:       c.CreatedAt,
	}
}

// NewMoneyRequestResponse maps a money request onto its response shape.
func NewMoneyRequestResponse(r *domain.MoneyRequest) MoneyRequestResponse {
	return MoneyRequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		PayerID:     r.PayerID,
		Amount:      r.Amount.ToBTC(),
		Description: r.Description,
		IsResolved:  r.IsResolved,
		Declined:    r.Declined,
		CreatedAt:   r.CreatedAt,
	}
}

// ParseAmount converts a BTC amount from the wire into satoshis.
func ParseAmount(btc float64) (btcutil.Amount, error) {
	return btcutil.NewAmount(btc)
}
