package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/rs/zerolog"
)

// Balance reads are cheap but still node round trips; cache them briefly.
const balanceCacheTTL = 15 * time.Second

// WalletProvisionerImpl implements ports.WalletProvisioner. Wallet names
// are derived from the user id, so provisioning is idempotent: every step
// treats "already there" as success.
type WalletProvisionerImpl struct {
	node     ports.NodeClient
	userRepo ports.UserRepository
	cache    ports.BalanceCache
	log      zerolog.Logger
}

// NewWalletProvisioner creates a new WalletProvisionerImpl.
func NewWalletProvisioner(node ports.NodeClient, userRepo ports.UserRepository, cache ports.BalanceCache, log zerolog.Logger) *WalletProvisionerImpl {
	return &WalletProvisionerImpl{
		node:     node,
		userRepo: userRepo,
		cache:    cache,
		log:      log.With().Str("component", "wallet_provisioner").Logger(),
	}
}

// EnsureWallet makes sure the user's wallet exists and is loaded on the
// node, returning the wallet name.
func (s *WalletProvisionerImpl) EnsureWallet(ctx context.Context, user *domain.User) (string, error) {
	name := user.WalletName
	if name == "" {
		name = domain.WalletNameFor(user.ID)
	}

	// Fast path: already loaded.
	loaded, err := s.node.ListWallets(ctx)
	if err != nil {
		return "", err
	}
	found := false
	for _, w := range loaded {
		if w == name {
			found = true
			break
		}
	}

	if !found {
		err := s.node.LoadWallet(ctx, name)
		if errors.Is(err, ports.ErrWalletMissing) {
			s.log.Info().Str("wallet", name).Msg("creating custodial wallet")
			err = s.node.CreateWallet(ctx, name)
		}
		if err != nil {
			return "", apperror.ErrWalletProvisioningFailed(err)
		}
	}

	if user.WalletName == "" {
		if err := s.userRepo.SetWalletBinding(ctx, user.ID, name, ""); err != nil {
			return "", apperror.ErrWalletProvisioningFailed(fmt.Errorf("persist wallet name: %w", err))
		}
		user.WalletName = name
	}
	return name, nil
}

// EnsureAddress returns the user's receiving address, generating and
// persisting one on first call. The stored address is authoritative:
// once set it is never regenerated.
func (s *WalletProvisionerImpl) EnsureAddress(ctx context.Context, user *domain.User) (string, error) {
	if user.ReceiveAddress != "" {
		return user.ReceiveAddress, nil
	}

	name, err := s.EnsureWallet(ctx, user)
	if err != nil {
		return "", err
	}

	addr, err := s.node.GetNewAddress(ctx, name)
	if err != nil {
		return "", apperror.ErrWalletProvisioningFailed(err)
	}
	if err := s.userRepo.SetWalletBinding(ctx, user.ID, name, addr); err != nil {
		return "", apperror.ErrWalletProvisioningFailed(fmt.Errorf("persist address: %w", err))
	}

	user.ReceiveAddress = addr
	s.log.Info().Str("wallet", name).Str("address", addr).Msg("receiving address provisioned")
	return addr, nil
}

// Balance reports the user's confirmed on-node balance, short-cached.
func (s *WalletProvisionerImpl) Balance(ctx context.Context, user *domain.User) (btcutil.Amount, error) {
	if amt, ok, err := s.cache.Get(ctx, user.ID); err == nil && ok {
		return amt, nil
	}

	name, err := s.EnsureWallet(ctx, user)
	if err != nil {
		return 0, err
	}
	amt, err := s.node.GetBalance(ctx, name)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, user.ID, amt, balanceCacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("balance cache write failed")
	}
	return amt, nil
}
