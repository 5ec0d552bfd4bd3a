package handler

import (
	"paybit/internal/adapter/http/dto"
	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"
	"paybit/pkg/response"

	"github.com/gin-gonic/gin"
)

// CampaignHandler handles donation campaign endpoints.
type CampaignHandler struct {
	campaignSvc ports.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaignSvc ports.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc}
}

// Create handles POST /api/v1/campaigns.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CampaignCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	goal, err := dto.ParseAmount(req.GoalAmount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	created, err := h.campaignSvc.Create(c.Request.Context(), currentUserID(c), &domain.Campaign{
		Name:        req.Name,
		Description: req.Description,
		GoalAmount:  goal,
		Image:       req.Image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewCampaignResponse(created))
}

// Get handles GET /api/v1/campaigns/:id.
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaignSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewCampaignResponse(campaign))
}

// List handles GET /api/v1/campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.campaignSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, dto.NewCampaignResponse(&campaigns[i]))
	}
	response.OK(c, items)
}

// Update handles PUT /api/v1/campaigns/:id.
func (h *CampaignHandler) Update(c *gin.Context) {
	var req dto.CampaignUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	goal, err := dto.ParseAmount(req.GoalAmount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	updated, err := h.campaignSvc.Update(c.Request.Context(), currentUserID(c), &domain.Campaign{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		GoalAmount:  goal,
		Image:       req.Image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewCampaignResponse(updated))
}

// Delete handles DELETE /api/v1/campaigns/:id.
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaignSvc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// Donate handles POST /api/v1/campaigns/:id/donate.
func (h *CampaignHandler) Donate(c *gin.Context) {
	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	donorID := currentUserID(c)
	result, err := h.campaignSvc.Donate(c.Request.Context(), donorID, c.Param("id"), amount, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DonationResponse{
		Transaction: result.Transaction.ViewFor(donorID),
		Campaign:    dto.NewCampaignResponse(result.Campaign),
	})
}
