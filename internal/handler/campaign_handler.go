package handler

import (
	"errors"
	"net/http"

	"subpage-service/internal/adapter/auth"
	"subpage-service/internal/entity"
	"subpage-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userKey = "user"

type CampaignHandler struct {
	usecase  usecase.DraftUsecase
	verifier auth.Verifier
	logger   *logrus.Logger
}

func NewCampaignHandler(usecase usecase.DraftUsecase, verifier auth.Verifier, logger *logrus.Logger) *CampaignHandler {
	return &CampaignHandler{
		usecase:  usecase,
		verifier: verifier,
		logger:   logger,
	}
}

// RequireUser resolves the bearer token and stores the caller on the context.
func (h *CampaignHandler) RequireUser(c *gin.Context) {
	user, err := h.verifier.UserFromToken(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, err.Error())
		default:
			h.logger.WithError(err).Error("Auth service unavailable")
			respondError(c, http.StatusBadGateway, "Auth service unavailable")
		}
		return
	}

	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*entity.User); ok {
			return user
		}
	}
	return nil
}

func (h *CampaignHandler) SaveDraft(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.usecase.SaveDraft(c.Request.Context(), user, usecase.SaveDraftInput{
		Title:            req.Title,
		Description:      req.Description,
		CreatorName:      req.CreatorName,
		BaseCost:         req.BaseCost,
		Profit:           req.Profit,
		Currency:         req.Currency,
		CampaignDuration: req.CampaignDuration,
		SalesGoal:        req.SalesGoal,
		SelectedColors:   req.SelectedColors,
		FeaturedColorID:  req.FeaturedColorID,
		SelectedProducts: req.SelectedProducts,
	})
	if err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to save campaign draft")
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	campaign, err := h.usecase.GetCampaign(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	respondOK(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) LaunchCampaign(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	campaign, err := h.usecase.LaunchCampaign(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	respondOK(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) writeCampaignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCampaignID):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrCampaignNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		h.logger.WithError(err).WithField("campaign_id", c.Param("id")).Error("Campaign request failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
