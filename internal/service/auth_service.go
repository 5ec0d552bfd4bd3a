package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo    ports.UserRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	provisioner ports.WalletProvisioner
	log         zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	provisioner ports.WalletProvisioner,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		provisioner: provisioner,
		log:         log.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a new account and eagerly provisions its custodial
// wallet. Provisioning failure does not fail registration; the wallet is
// re-provisioned lazily on first use.
func (s *AuthServiceImpl) Register(ctx context.Context, fullname, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	uid, err := newUID()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate uid: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		UID:          uid,
		Fullname:     fullname,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.provisioner.EnsureAddress(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).
			Msg("wallet provisioning at registration failed, deferred to first use")
	}

	token, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Login validates credentials and returns a session token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrInvalidCredentials()
		}
		return nil, err
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// newUID generates a short public account tag, distinct from the
// internal id.
func newUID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
