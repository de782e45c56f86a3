package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subpage-service/internal/adapter/exchangerate"
	"subpage-service/internal/adapter/postgres"
	"subpage-service/internal/cache"
	"subpage-service/internal/entity"
	"subpage-service/internal/metrics"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoFallbackRate = errors.New("no fallback rate for currency pair")
	errRateMissing    = errors.New("rate missing in provider response")
)

type ExchangeService interface {
	ResolveRate(ctx context.Context, from, to entity.CurrencyCode) (float64, error)
	RefreshRates(ctx context.Context) error
	ListRates(ctx context.Context) ([]entity.ExchangeRate, error)
}

type RateService struct {
	provider     exchangerate.RateProvider
	repo         postgres.RateRepository
	cache        *cache.RateCache
	metrics      *metrics.Metrics
	logger       *logrus.Logger
	fetchTimeout time.Duration
	group        singleflight.Group
}

func NewRateService(
	provider exchangerate.RateProvider,
	repo postgres.RateRepository,
	rateCache *cache.RateCache,
	m *metrics.Metrics,
	fetchTimeout time.Duration,
	logger *logrus.Logger,
) *RateService {
	return &RateService{
		provider:     provider,
		repo:         repo,
		cache:        rateCache,
		metrics:      m,
		logger:       logger,
		fetchTimeout: fetchTimeout,
	}
}

// ResolveRate returns the multiplier converting one unit of from into to.
// Priority is identity, fresh cache entry, provider, then the fallback table.
// Provider failures are logged and never returned to the caller.
func (s *RateService) ResolveRate(ctx context.Context, from, to entity.CurrencyCode) (float64, error) {
	pair := entity.NewCurrencyPair(from, to)

	if pair.IsIdentity() {
		s.observeLookup(metrics.LookupIdentity)
		return 1, nil
	}

	if rate, ok := s.cache.Get(pair); ok {
		s.observeLookup(metrics.LookupCacheHit)
		return rate, nil
	}

	v, err, shared := s.group.Do(pair.String(), func() (any, error) {
		return s.fetchPair(ctx, pair)
	})
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"pair":   pair.String(),
			"shared": shared,
		}).Debug("Resolved rate from provider")
		s.observeLookup(metrics.LookupFetched)
		return v.(float64), nil
	}

	s.logger.WithError(err).WithField("pair", pair.String()).Warn("Rate provider failed, using fallback rate")

	rate, ok := FallbackRate(pair)
	if !ok {
		s.observeLookup(metrics.LookupMiss)
		return 0, fmt.Errorf("%w: %s", ErrNoFallbackRate, pair)
	}
	s.observeLookup(metrics.LookupFallback)
	return rate, nil
}

// fetchPair makes the single provider attempt for a cache miss. The request
// outlives the caller's cancellation so the cache still gets populated.
func (s *RateService) fetchPair(ctx context.Context, pair entity.CurrencyPair) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	latest, err := s.fetch(fetchCtx, pair.From)
	if err != nil {
		return 0, err
	}

	rate, ok := latest.Rate(pair.To)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errRateMissing, pair.To)
	}

	s.cache.Set(pair, rate)
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	return rate, nil
}

func (s *RateService) fetch(ctx context.Context, base entity.CurrencyCode) (*exchangerate.LatestRates, error) {
	start := time.Now()
	latest, err := s.provider.FetchRates(ctx, base)

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.ProviderFetchDuration.WithLabelValues(string(base), result).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	return latest, nil
}

// RefreshRates pulls every supported pair from the provider, warms the cache
// and stores the snapshots. Pairs that were fetched are stored even when other
// bases fail; all failures are returned together.
func (s *RateService) RefreshRates(ctx context.Context) error {
	s.logger.Info("Refreshing exchange rates from provider...")

	var (
		errs      error
		snapshots []entity.ExchangeRate
	)

	for _, base := range entity.SupportedCurrencies {
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		latest, err := s.fetch(fetchCtx, base)
		cancel()
		if err != nil {
			s.logger.WithError(err).WithField("base", base).Error("Failed to refresh rates")
			errs = multierr.Append(errs, err)
			continue
		}

		fetchedAt := time.Now().UTC()
		for _, target := range entity.SupportedCurrencies {
			if target == base {
				continue
			}
			pair := entity.NewCurrencyPair(base, target)
			rate, ok := latest.Rate(target)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s", errRateMissing, pair))
				continue
			}
			s.cache.Set(pair, rate)
			snapshots = append(snapshots, entity.ExchangeRate{
				From:      pair.From,
				To:        pair.To,
				Rate:      rate,
				FetchedAt: fetchedAt,
			})
		}
	}
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))

	if len(snapshots) > 0 {
		if err := s.repo.StoreRates(ctx, snapshots); err != nil {
			s.logger.WithError(err).Error("Failed to store rate snapshots")
			errs = multierr.Append(errs, fmt.Errorf("store rates: %w", err))
		}
	}

	if errs != nil {
		return fmt.Errorf("refresh rates: %w", errs)
	}

	s.logger.WithField("count", len(snapshots)).Info("Exchange rates successfully refreshed")
	return nil
}

func (s *RateService) ListRates(ctx context.Context) ([]entity.ExchangeRate, error) {
	rates, err := s.repo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return rates, nil
}

// SweepCache drops stale cache entries; the scheduler calls it periodically.
func (s *RateService) SweepCache() int {
	removed := s.cache.Sweep()
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	if removed > 0 {
		s.logger.WithField("removed", removed).Debug("Swept stale rate cache entries")
	}
	return removed
}

func (s *RateService) observeLookup(outcome string) {
	s.metrics.RateLookups.WithLabelValues(outcome).Inc()
}
