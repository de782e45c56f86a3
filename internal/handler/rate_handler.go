package handler

import (
	"net/http"

	"subpage-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RateHandler struct {
	usecase usecase.RateUsecase
	logger  *logrus.Logger
}

func NewRateHandler(usecase usecase.RateUsecase, logger *logrus.Logger) *RateHandler {
	return &RateHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *RateHandler) RefreshRates(c *gin.Context) {
	if err := h.usecase.RefreshRates(c.Request.Context()); err != nil {
		h.logger.Errorf("Failed to refresh rates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh rates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rates successfully updated"})
}

func (h *RateHandler) ListRates(c *gin.Context) {
	rates, err := h.usecase.ListRates(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load rates")
		return
	}

	respondOK(c, http.StatusOK, rates)
}
