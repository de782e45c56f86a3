package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"subpage-service/internal/adapter/exchangerate"
	"subpage-service/internal/cache"
	"subpage-service/internal/entity"
	"subpage-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchRates(ctx context.Context, base entity.CurrencyCode) (*exchangerate.LatestRates, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchangerate.LatestRates), args.Error(1)
}

type mockRateRepo struct {
	mock.Mock
}

func (m *mockRateRepo) StoreRates(ctx context.Context, rates []entity.ExchangeRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

func (m *mockRateRepo) ListRates(ctx context.Context) ([]entity.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExchangeRate), args.Error(1)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	service  *RateService
	provider *mockProvider
	repo     *mockRateRepo
	clock    *clock
	metrics  *metrics.Metrics
	hook     *test.Hook
}

func setupTestService() testEnv {
	provider := new(mockProvider)
	repo := new(mockRateRepo)
	clk := &clock{now: time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)}
	m := metrics.New(prometheus.NewRegistry())
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	rateCache := cache.NewRateCache(5*time.Minute, cache.WithClock(clk.Now))
	svc := NewRateService(provider, repo, rateCache, m, time.Second, logger)

	return testEnv{
		service:  svc,
		provider: provider,
		repo:     repo,
		clock:    clk,
		metrics:  m,
		hook:     hook,
	}
}

func usdRates(vnd float64) *exchangerate.LatestRates {
	return &exchangerate.LatestRates{
		Base:  "USD",
		Rates: map[string]float64{"USD": 1, "VND": vnd, "EUR": 0.92},
	}
}

func vndRates(usd float64) *exchangerate.LatestRates {
	return &exchangerate.LatestRates{
		Base:  "VND",
		Rates: map[string]float64{"VND": 1, "USD": usd},
	}
}

func TestResolveRate_Identity(t *testing.T) {
	env := setupTestService()

	rate, err := env.service.ResolveRate(context.Background(), "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)

	env.provider.AssertNotCalled(t, "FetchRates", mock.Anything, mock.Anything)
	assert.Equal(t, 0, env.service.cache.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLookups.WithLabelValues(metrics.LookupIdentity)))
}

func TestResolveRate_FetchesOnceWithinTTL(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil).Once()

	rate, err := env.service.ResolveRate(ctx, "usd", "vnd")
	require.NoError(t, err)
	assert.Equal(t, 26150.0, rate)

	env.clock.Advance(4 * time.Minute)

	rate, err = env.service.ResolveRate(ctx, "USD", "VND")
	require.NoError(t, err)
	assert.Equal(t, 26150.0, rate)

	env.provider.AssertNumberOfCalls(t, "FetchRates", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLookups.WithLabelValues(metrics.LookupFetched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLookups.WithLabelValues(metrics.LookupCacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CacheEntries))
}

func TestResolveRate_RefetchesAfterTTL(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil).Once()
	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26200), nil).Once()

	_, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)

	rate, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 26200.0, rate)
	env.provider.AssertNumberOfCalls(t, "FetchRates", 2)
}

func TestResolveRate_CacheIsKeyedByOrderedPair(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil).Once()
	env.provider.On("FetchRates", mock.Anything, entity.VND).Return(vndRates(0.0000382), nil).Once()

	forward, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	backward, err := env.service.ResolveRate(ctx, entity.VND, entity.USD)
	require.NoError(t, err)

	assert.Equal(t, 26150.0, forward)
	assert.Equal(t, 0.0000382, backward)
	env.provider.AssertExpectations(t)
}

func TestResolveRate_ProviderErrorUsesFallback(t *testing.T) {
	tests := []struct {
		name     string
		from, to entity.CurrencyCode
		expected float64
	}{
		{"usd to vnd", entity.USD, entity.VND, 25000},
		{"vnd to usd", entity.VND, entity.USD, 0.00004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestService()
			env.provider.On("FetchRates", mock.Anything, tt.from).Return(nil, errors.New("unexpected status code: 503"))

			rate, err := env.service.ResolveRate(context.Background(), tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rate)

			assert.Equal(t, 0, env.service.cache.Len())
			assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLookups.WithLabelValues(metrics.LookupFallback)))

			require.NotEmpty(t, env.hook.AllEntries())
			assert.Equal(t, logrus.WarnLevel, env.hook.LastEntry().Level)
		})
	}
}

func TestResolveRate_MissingTargetUsesFallback(t *testing.T) {
	env := setupTestService()
	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(&exchangerate.LatestRates{
		Base:  "USD",
		Rates: map[string]float64{"EUR": 0.92},
	}, nil)

	rate, err := env.service.ResolveRate(context.Background(), entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, rate)
}

func TestResolveRate_FallbackIsNotCached(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(nil, errors.New("timeout")).Once()
	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil).Once()

	rate, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, rate)

	rate, err = env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 26150.0, rate)
	env.provider.AssertNumberOfCalls(t, "FetchRates", 2)
}

func TestResolveRate_NoFallbackForPair(t *testing.T) {
	env := setupTestService()
	env.provider.On("FetchRates", mock.Anything, entity.CurrencyCode("EUR")).Return(nil, errors.New("connection refused"))

	_, err := env.service.ResolveRate(context.Background(), "eur", "usd")
	assert.ErrorIs(t, err, ErrNoFallbackRate)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLookups.WithLabelValues(metrics.LookupMiss)))
}

func TestResolveRate_FetchIgnoresCallerCancellation(t *testing.T) {
	env := setupTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env.provider.On("FetchRates", mock.Anything, entity.USD).
		Run(func(args mock.Arguments) {
			fetchCtx := args.Get(0).(context.Context)
			assert.NoError(t, fetchCtx.Err())
			_, hasDeadline := fetchCtx.Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(usdRates(26150), nil)

	rate, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 26150.0, rate)

	cached, ok := env.service.cache.Get(entity.NewCurrencyPair(entity.USD, entity.VND))
	assert.True(t, ok)
	assert.Equal(t, 26150.0, cached)
}

func TestResolveRate_ConcurrentMissesShareOneFetch(t *testing.T) {
	env := setupTestService()
	release := make(chan struct{})

	env.provider.On("FetchRates", mock.Anything, entity.USD).
		Run(func(args mock.Arguments) { <-release }).
		Return(usdRates(26150), nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]float64, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rate, err := env.service.ResolveRate(context.Background(), entity.USD, entity.VND)
			assert.NoError(t, err)
			results[i] = rate
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 26150.0, r)
	}
	env.provider.AssertNumberOfCalls(t, "FetchRates", 1)
}

func TestRefreshRates(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil).Once()
	env.provider.On("FetchRates", mock.Anything, entity.VND).Return(vndRates(0.0000382), nil).Once()
	env.repo.On("StoreRates", ctx, mock.MatchedBy(func(rates []entity.ExchangeRate) bool {
		return len(rates) == 2 &&
			rates[0].From == entity.USD && rates[0].To == entity.VND && rates[0].Rate == 26150 &&
			rates[1].From == entity.VND && rates[1].To == entity.USD && rates[1].Rate == 0.0000382
	})).Return(nil)

	err := env.service.RefreshRates(ctx)
	require.NoError(t, err)

	rate, err := env.service.ResolveRate(ctx, entity.USD, entity.VND)
	require.NoError(t, err)
	assert.Equal(t, 26150.0, rate)

	env.provider.AssertNumberOfCalls(t, "FetchRates", 2)
	env.repo.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CacheEntries))
}

func TestRefreshRates_PartialFailure(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil)
	env.provider.On("FetchRates", mock.Anything, entity.VND).Return(nil, errors.New("unexpected status code: 500"))
	env.repo.On("StoreRates", ctx, mock.MatchedBy(func(rates []entity.ExchangeRate) bool {
		return len(rates) == 1 && rates[0].From == entity.USD
	})).Return(nil)

	err := env.service.RefreshRates(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch rates for VND")
	env.repo.AssertExpectations(t)
}

func TestRefreshRates_StoreError(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil)
	env.provider.On("FetchRates", mock.Anything, entity.VND).Return(vndRates(0.0000382), nil)
	env.repo.On("StoreRates", ctx, mock.Anything).Return(errors.New("db down"))

	err := env.service.RefreshRates(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestListRates(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()
	expected := []entity.ExchangeRate{{From: entity.USD, To: entity.VND, Rate: 26150}}

	env.repo.On("ListRates", ctx).Return(expected, nil)

	rates, err := env.service.ListRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, rates)
}

func TestListRates_Error(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	env.repo.On("ListRates", ctx).Return(nil, errors.New("db error"))

	rates, err := env.service.ListRates(ctx)
	assert.Nil(t, rates)
	assert.ErrorContains(t, err, "list rates")
}

func TestSweepCache(t *testing.T) {
	env := setupTestService()
	env.provider.On("FetchRates", mock.Anything, entity.USD).Return(usdRates(26150), nil)

	_, err := env.service.ResolveRate(context.Background(), entity.USD, entity.VND)
	require.NoError(t, err)

	assert.Equal(t, 0, env.service.SweepCache())
	env.clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, env.service.SweepCache())
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.CacheEntries))
}

func TestFallbackRate(t *testing.T) {
	rate, ok := FallbackRate(entity.NewCurrencyPair(entity.USD, entity.VND))
	assert.True(t, ok)
	assert.Equal(t, 25000.0, rate)

	_, ok = FallbackRate(entity.NewCurrencyPair("EUR", entity.USD))
	assert.False(t, ok)
}
