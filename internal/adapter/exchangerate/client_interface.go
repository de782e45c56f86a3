package exchangerate

import (
	"context"

	"subpage-service/internal/entity"
)

type RateProvider interface {
	FetchRates(ctx context.Context, base entity.CurrencyCode) (*LatestRates, error)
}
