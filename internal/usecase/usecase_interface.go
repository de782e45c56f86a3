package usecase

import (
	"context"

	"subpage-service/internal/entity"
)

type RateUsecase interface {
	Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*entity.Conversion, error)
	RefreshRates(ctx context.Context) error
	ListRates(ctx context.Context) ([]entity.ExchangeRate, error)
}

type DraftUsecase interface {
	SaveDraft(ctx context.Context, user *entity.User, in SaveDraftInput) (*entity.Campaign, error)
	GetCampaign(ctx context.Context, user *entity.User, id string) (*entity.Campaign, error)
	LaunchCampaign(ctx context.Context, user *entity.User, id string) (*entity.Campaign, error)
}
