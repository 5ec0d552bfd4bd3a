package service

import (
	"context"
	"testing"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports/mocks"
	"paybit/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type contactTestDeps struct {
	svc         *ContactServiceImpl
	contactRepo *mocks.MockContactRepository
	userRepo    *mocks.MockUserRepository
	ctrl        *gomock.Controller
}

func setupContactService(t *testing.T) *contactTestDeps {
	ctrl := gomock.NewController(t)
	d := &contactTestDeps{
		contactRepo: mocks.NewMockContactRepository(ctrl),
		userRepo:    mocks.NewMockUserRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewContactService(d.contactRepo, d.userRepo, zerolog.Nop())
	return d
}

func TestContactService_Add(t *testing.T) {
	d := setupContactService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	target := &domain.User{ID: "u2", Fullname: "Bob", Email: "bob@example.com", ReceiveAddress: "bcrt1qbob"}

	d.userRepo.EXPECT().GetByEmail(ctx, "bob@example.com").Return(target, nil)
	d.contactRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Contact) error {
			assert.Equal(t, "u1", c.OwnerID)
			assert.Equal(t, "u2", c.ContactID)
			return nil
		})

	view, err := d.svc.Add(ctx, "u1", " Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", view.Fullname)
	assert.Equal(t, "bcrt1qbob", view.ReceiveAddress)
}

func TestContactService_Add_Self(t *testing.T) {
	d := setupContactService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "me@example.com").
		Return(&domain.User{ID: "u1", Email: "me@example.com"}, nil)

	_, err := d.svc.Add(ctx, "u1", "me@example.com")
	assertAppError(t, err, "VAL_001")
}

func TestContactService_Add_Duplicate(t *testing.T) {
	d := setupContactService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "bob@example.com").
		Return(&domain.User{ID: "u2", Email: "bob@example.com"}, nil)
	d.contactRepo.EXPECT().Create(ctx, gomock.Any()).Return(apperror.ErrDuplicateContact())

	_, err := d.svc.Add(ctx, "u1", "bob@example.com")
	assertAppError(t, err, "TXN_007")
}

func TestContactService_List_SkipsVanishedUsers(t *testing.T) {
	d := setupContactService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	now := time.Now().UTC()
	contacts := []domain.Contact{
		{ID: "c1", OwnerID: "u1", ContactID: "u2", CreatedAt: now},
		{ID: "c2", OwnerID: "u1", ContactID: "gone", CreatedAt: now},
	}

	d.contactRepo.EXPECT().ListByOwner(ctx, "u1").Return(contacts, nil)
	d.userRepo.EXPECT().GetByID(ctx, "u2").
		Return(&domain.User{ID: "u2", Fullname: "Bob"}, nil)
	d.userRepo.EXPECT().GetByID(ctx, "gone").
		Return(nil, apperror.ErrNotFound("User"))

	views, err := d.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Bob", views[0].Fullname)
}
