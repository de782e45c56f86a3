package handler

import (
	"net/http"

	"subpage-service/internal/entity"
	"subpage-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ConversionHandler struct {
	usecase usecase.RateUsecase
	logger  *logrus.Logger
}

func NewConversionHandler(usecase usecase.RateUsecase, logger *logrus.Logger) *ConversionHandler {
	return &ConversionHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *ConversionHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Malformed conversion request")
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil {
		respondError(c, http.StatusBadRequest, entity.ErrInvalidAmount.Error())
		return
	}

	result, err := h.usecase.Convert(c.Request.Context(), *req.Amount, req.FromCurrency, req.ToCurrency)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"from": req.FromCurrency,
			"to":   req.ToCurrency,
		}).Warn("Conversion failed")
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusOK, result)
}

// Preflight answers OPTIONS requests that the CORS middleware did not short-circuit.
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, "Method not allowed")
}
