package service

import (
	"context"
	"strings"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CampaignServiceImpl implements ports.CampaignService. Donations run
// through the transfer orchestrator; the campaign aggregate is only
// incremented after the transfer completed.
type CampaignServiceImpl struct {
	campaignRepo ports.CampaignRepository
	transferSvc  ports.TransferService
	log          zerolog.Logger
}

// NewCampaignService creates a new CampaignServiceImpl.
func NewCampaignService(campaignRepo ports.CampaignRepository, transferSvc ports.TransferService, log zerolog.Logger) *CampaignServiceImpl {
	return &CampaignServiceImpl{
		campaignRepo: campaignRepo,
		transferSvc:  transferSvc,
		log:          log.With().Str("component", "campaign_service").Logger(),
	}
}

func (s *CampaignServiceImpl) Create(ctx context.Context, ownerID string, c *domain.Campaign) (*domain.Campaign, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, apperror.Validation("campaign name is required")
	}
	if c.GoalAmount <= 0 {
		return nil, apperror.Validation("goal amount must be greater than zero")
	}

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatorID = ownerID
	c.CollectedAmount = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("campaign_id", c.ID).Str("creator_id", ownerID).Msg("campaign created")
	return c, nil
}

func (s *CampaignServiceImpl) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

func (s *CampaignServiceImpl) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.campaignRepo.List(ctx)
}

// Update edits campaign metadata. Only the creator may edit, and the
// goal can never drop below what has already been collected.
func (s *CampaignServiceImpl) Update(ctx context.Context, ownerID string, c *domain.Campaign) (*domain.Campaign, error) {
	current, err := s.campaignRepo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if current.CreatorID != ownerID {
		return nil, apperror.ErrNotAuthorized()
	}
	if c.GoalAmount <= 0 {
		return nil, apperror.Validation("goal amount must be greater than zero")
	}
	if c.GoalAmount < current.CollectedAmount {
		return nil, apperror.ErrGoalBelowCollected()
	}

	current.Name = c.Name
	current.Description = c.Description
	current.GoalAmount = c.GoalAmount
	if c.Image != "" {
		current.Image = c.Image
	}
	if err := s.campaignRepo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *CampaignServiceImpl) Delete(ctx context.Context, ownerID, id string) error {
	current, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.CreatorID != ownerID {
		return apperror.ErrNotAuthorized()
	}
	return s.campaignRepo.Delete(ctx, id)
}

// Donate transfers from the donor to the campaign creator, then grows
// the collected total. A failed transfer leaves the aggregate untouched.
func (s *CampaignServiceImpl) Donate(ctx context.Context, donorID, campaignID string, amount btcutil.Amount, message string) (*ports.DonationResult, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	description := message
	if description == "" {
		description = "Donation to " + campaign.Name
	}

	result, err := s.transferSvc.Transfer(ctx, ports.TransferRequest{
		SenderID:    donorID,
		ReceiverID:  campaign.CreatorID,
		Amount:      amount,
		Type:        domain.TransactionTypeDonation,
		Description: description,
		CampaignID:  &campaign.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.campaignRepo.IncrementCollected(ctx, campaign.ID, amount); err != nil {
		// The donation itself succeeded; the aggregate is off until
		// someone re-derives it from the ledger.
		s.log.Error().Err(err).Str("campaign_id", campaign.ID).
			Msg("incrementing collected total after donation")
	}

	updated, err := s.campaignRepo.GetByID(ctx, campaign.ID)
	if err != nil {
		updated = campaign
	}

	return &ports.DonationResult{Transaction: result.Transaction, Campaign: updated}, nil
}
