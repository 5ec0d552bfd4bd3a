package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/ports"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	users ports.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users ports.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewUserResponse(user))
}
