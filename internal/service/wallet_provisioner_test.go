package service

import (
	"context"
	"fmt"
	"testing"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/internal/core/ports/mocks"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type provisionerTestDeps struct {
	svc      *WalletProvisionerImpl
	node     *mocks.MockNodeClient
	userRepo *mocks.MockUserRepository
	cache    *mocks.MockBalanceCache
	ctrl     *gomock.Controller
}

func setupProvisioner(t *testing.T) *provisionerTestDeps {
	ctrl := gomock.NewController(t)
	d := &provisionerTestDeps{
		node:     mocks.NewMockNodeClient(ctrl),
		userRepo: mocks.NewMockUserRepository(ctrl),
		cache:    mocks.NewMockBalanceCache(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewWalletProvisioner(d.node, d.userRepo, d.cache, zerolog.Nop())
	return d
}

func TestWalletProvisioner_EnsureWallet_AlreadyLoaded(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1", WalletName: "user_wallet_u1"}

	d.node.EXPECT().ListWallets(ctx).Return([]string{"user_wallet_u1"}, nil)

	name, err := d.svc.EnsureWallet(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "user_wallet_u1", name)
}

func TestWalletProvisioner_EnsureWallet_LoadsExisting(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	d.node.EXPECT().ListWallets(ctx).Return([]string{}, nil)
	d.node.EXPECT().LoadWallet(ctx, "user_wallet_u1").Return(nil)
	d.userRepo.EXPECT().SetWalletBinding(ctx, "u1", "user_wallet_u1", "").Return(nil)

	name, err := d.svc.EnsureWallet(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "user_wallet_u1", name)
	assert.Equal(t, "user_wallet_u1", user.WalletName)
}

func TestWalletProvisioner_EnsureWallet_CreatesMissing(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	d.node.EXPECT().ListWallets(ctx).Return(nil, nil)
	d.node.EXPECT().LoadWallet(ctx, "user_wallet_u1").
		Return(fmt.Errorf("loadwallet: %w", ports.ErrWalletMissing))
	d.node.EXPECT().CreateWallet(ctx, "user_wallet_u1").Return(nil)
	d.userRepo.EXPECT().SetWalletBinding(ctx, "u1", "user_wallet_u1", "").Return(nil)

	name, err := d.svc.EnsureWallet(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "user_wallet_u1", name)
}

func TestWalletProvisioner_EnsureAddress_ReturnsStoredAddress(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	user := &domain.User{ID: "u1", WalletName: "user_wallet_u1", ReceiveAddress: "bcrt1qstored"}

	// No node calls at all: the stored address is authoritative.
	addr, err := d.svc.EnsureAddress(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "bcrt1qstored", addr)
}

func TestWalletProvisioner_EnsureAddress_GeneratesAndPersists(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1", WalletName: "user_wallet_u1"}

	d.node.EXPECT().ListWallets(ctx).Return([]string{"user_wallet_u1"}, nil)
	d.node.EXPECT().GetNewAddress(ctx, "user_wallet_u1").Return("bcrt1qfresh", nil)
	d.userRepo.EXPECT().SetWalletBinding(ctx, "u1", "user_wallet_u1", "bcrt1qfresh").Return(nil)

	addr, err := d.svc.EnsureAddress(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "bcrt1qfresh", addr)
	assert.Equal(t, "bcrt1qfresh", user.ReceiveAddress)
}

func TestWalletProvisioner_Balance_CacheHit(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1", WalletName: "user_wallet_u1"}
	cached := btcutil.Amount(150_000_000)

	d.cache.EXPECT().Get(ctx, "u1").Return(cached, true, nil)

	amt, err := d.svc.Balance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, cached, amt)
}

func TestWalletProvisioner_Balance_MissReadsNode(t *testing.T) {
	d := setupProvisioner(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: "u1", WalletName: "user_wallet_u1"}
	fresh := btcutil.Amount(25_000_000)

	d.cache.EXPECT().Get(ctx, "u1").Return(btcutil.Amount(0), false, nil)
	d.node.EXPECT().ListWallets(ctx).Return([]string{"user_wallet_u1"}, nil)
	d.node.EXPECT().GetBalance(ctx, "user_wallet_u1").Return(fresh, nil)
	d.cache.EXPECT().Set(ctx, "u1", fresh, balanceCacheTTL).Return(nil)

	amt, err := d.svc.Balance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, fresh, amt)
}
