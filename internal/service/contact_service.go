package service

import (
	"context"
	"strings"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContactServiceImpl implements ports.ContactService.
type ContactServiceImpl struct {
	contactRepo ports.ContactRepository
	userRepo    ports.UserRepository
	log         zerolog.Logger
}

// NewContactService creates a new ContactServiceImpl.
func NewContactService(contactRepo ports.ContactRepository, userRepo ports.UserRepository, log zerolog.Logger) *ContactServiceImpl {
	return &ContactServiceImpl{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		log:         log.With().Str("component", "contact_service").Logger(),
	}
}

// Add saves the user behind contactEmail into the owner's contact list.
func (s *ContactServiceImpl) Add(ctx context.Context, ownerID, contactEmail string) (*domain.ContactView, error) {
	contactEmail = strings.ToLower(strings.TrimSpace(contactEmail))

	target, err := s.userRepo.GetByEmail(ctx, contactEmail)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, apperror.Validation("cannot add yourself as a contact")
	}

	contact := &domain.Contact{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ContactID: target.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	view := contactView(contact, target)
	return &view, nil
}

// List returns the owner's contacts joined with the referenced profiles.
// Contacts whose account vanished are skipped.
func (s *ContactServiceImpl) List(ctx context.Context, ownerID string) ([]domain.ContactView, error) {
	contacts, err := s.contactRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ContactView, 0, len(contacts))
	for i := range contacts {
		user, err := s.userRepo.GetByID(ctx, contacts[i].ContactID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		views = append(views, contactView(&contacts[i], user))
	}
	return views, nil
}

func (s *ContactServiceImpl) Remove(ctx context.Context, ownerID, contactID string) error {
	return s.contactRepo.Delete(ctx, ownerID, contactID)
}

func contactView(c *domain.Contact, user *domain.User) domain.ContactView {
	return domain.ContactView{
		ID:             c.ID,
		UserID:         user.ID,
		Fullname:       user.Fullname,
		Email:          user.Email,
		ProfileImage:   user.ProfileImage,
		ReceiveAddress: user.ReceiveAddress,
		AddedAt:        c.CreatedAt,
	}
}
