package postgres

import (
	"context"
	"time"

	"subpage-service/internal/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RateRepository interface {
	StoreRates(ctx context.Context, rates []entity.ExchangeRate) error
	ListRates(ctx context.Context) ([]entity.ExchangeRate, error)
}

type CampaignRepository interface {
	CreateCampaignDraft(ctx context.Context, campaign *entity.Campaign) error
	GetCampaign(ctx context.Context, id uuid.UUID, userID string) (*entity.Campaign, error)
	LaunchCampaign(ctx context.Context, id uuid.UUID, userID string, at time.Time) error
}

// Pool is the subset of pgxpool.Pool the repositories use; pgxmock satisfies it.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}
