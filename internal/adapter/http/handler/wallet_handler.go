package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/adapter/http/middleware"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles custodial wallet endpoints.
type WalletHandler struct {
	provisioner ports.WalletProvisioner
	users       ports.UserRepository
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(provisioner ports.WalletProvisioner, users ports.UserRepository) *WalletHandler {
	return &WalletHandler{provisioner: provisioner, users: users}
}

// currentUserID returns the authenticated user id set by JWTAuth.
func currentUserID(c *gin.Context) string {
	if v, ok := c.Get(middleware.CtxUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// Balance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.provisioner.Balance(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:        balance.ToBTC(),
		ReceiveAddress: user.ReceiveAddress,
	})
}

// Address handles GET /api/v1/wallet/address. It provisions a receiving
// address on first call and returns the stored one afterwards.
func (h *WalletHandler) Address(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	addr, err := h.provisioner.EnsureAddress(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	if addr == "" {
		response.Error(c, apperror.ErrAddressNotProvisioned(user.ID))
		return
	}

	response.OK(c, gin.H{"receive_address": addr})
}
