package usecase

import (
	"context"
	"fmt"
	"time"

	"subpage-service/internal/entity"
	"subpage-service/internal/metrics"
	"subpage-service/internal/service"

	"github.com/sirupsen/logrus"
)

type CurrencyUsecase struct {
	service service.ExchangeService
	metrics *metrics.Metrics
	logger  *logrus.Logger
	now     func() time.Time
}

func NewCurrencyUsecase(service service.ExchangeService, m *metrics.Metrics, logger *logrus.Logger) *CurrencyUsecase {
	return &CurrencyUsecase{
		service: service,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Convert validates the request, resolves the rate and rounds the result to cents.
func (uc *CurrencyUsecase) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*entity.Conversion, error) {
	result, err := uc.convert(ctx, amount, fromCurrency, toCurrency)
	if err != nil {
		uc.metrics.Conversions.WithLabelValues(metrics.ConversionRejected).Inc()
		return nil, err
	}
	uc.metrics.Conversions.WithLabelValues(metrics.ConversionOK).Inc()
	return result, nil
}

func (uc *CurrencyUsecase) convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*entity.Conversion, error) {
	if err := entity.ValidateAmount(amount); err != nil {
		uc.logger.WithField("amount", amount).Debug("Rejected conversion amount")
		return nil, err
	}

	from, err := entity.ParseCurrency(fromCurrency)
	if err != nil {
		uc.logger.WithField("currency", fromCurrency).Debug("Rejected source currency")
		return nil, err
	}
	to, err := entity.ParseCurrency(toCurrency)
	if err != nil {
		uc.logger.WithField("currency", toCurrency).Debug("Rejected target currency")
		return nil, err
	}

	result := &entity.Conversion{
		OriginalAmount:  amount,
		FromCurrency:    from,
		ToCurrency:      to,
		ConvertedAmount: amount,
		Rate:            1,
	}

	if from != to {
		rate, err := uc.service.ResolveRate(ctx, from, to)
		if err != nil {
			uc.logger.WithError(err).Errorf("Failed to resolve rate %s -> %s", from, to)
			return nil, fmt.Errorf("resolve rate: %w", err)
		}
		result.Rate = rate
		result.ConvertedAmount = entity.RoundAmount(amount, rate)
	}

	result.Timestamp = uc.now().UTC()

	uc.logger.WithFields(logrus.Fields{
		"from":      from,
		"to":        to,
		"amount":    amount,
		"converted": result.ConvertedAmount,
		"rate":      result.Rate,
	}).Info("Currency converted")

	return result, nil
}

func (uc *CurrencyUsecase) RefreshRates(ctx context.Context) error {
	uc.logger.Info("Refreshing rates on request...")
	return uc.service.RefreshRates(ctx)
}

func (uc *CurrencyUsecase) ListRates(ctx context.Context) ([]entity.ExchangeRate, error) {
	rates, err := uc.service.ListRates(ctx)
	if err != nil {
		uc.logger.WithError(err).Error("Failed to list stored rates")
		return nil, err
	}
	return rates, nil
}
