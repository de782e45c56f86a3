package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subpage-service/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	psql        = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	ErrNotFound = errors.New("not found")
)

const upsertRateSuffix = `
                ON CONFLICT (from_currency, to_currency) DO UPDATE SET
                    rate = EXCLUDED.rate,
                    fetched_at = EXCLUDED.fetched_at
            `

type RateRepo struct {
	pool   Pool
	logger *logrus.Logger
}

func NewRateRepo(pool Pool, logger *logrus.Logger) *RateRepo {
	return &RateRepo{
		pool:   pool,
		logger: logger,
	}
}

func (r *RateRepo) StoreRates(ctx context.Context, rates []entity.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	r.logger.WithField("count", len(rates)).Debug("Start storing exchange rate snapshots")

	batch := &pgx.Batch{}
	for _, rate := range rates {
		query, args, err := psql.Insert("exchange_rates").
			Columns("from_currency", "to_currency", "rate", "fetched_at").
			Values(string(rate.From), string(rate.To), rate.Rate, rate.FetchedAt).
			Suffix(upsertRateSuffix).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert for %s_%s: %w", rate.From, rate.To, err)
		}
		batch.Queue(query, args...)
	}

	if err := r.execBatch(ctx, batch); err != nil {
		return err
	}

	r.logger.WithField("count", len(rates)).Info("Successfully stored exchange rate snapshots")
	return nil
}

func (r *RateRepo) execBatch(ctx context.Context, batch *pgx.Batch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := sendBatch(ctx, tx, batch, r.logger); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.WithError(rbErr).Error("Failed to rollback tx after batch errors")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to commit tx")
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// sendBatch runs every queued statement and combines all failures.
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, logger *logrus.Logger) error {
	br := tx.SendBatch(ctx, batch)

	var batchErrs error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			batchErrs = multierr.Append(batchErrs, err)
			logger.WithError(err).Errorf("Failed batch exec for statement %d", i)
		}
	}

	if err := br.Close(); err != nil {
		batchErrs = multierr.Append(batchErrs, err)
		logger.WithError(err).Error("Failed to close batch results")
	}

	if batchErrs != nil {
		return fmt.Errorf("batch exec/close errors: %w", batchErrs)
	}
	return nil
}

func (r *RateRepo) ListRates(ctx context.Context) ([]entity.ExchangeRate, error) {
	query, args, err := psql.
		Select("from_currency", "to_currency", "rate", "fetched_at").
		From("exchange_rates").
		OrderBy("from_currency", "to_currency").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to query exchange rates")
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	rates := make([]entity.ExchangeRate, 0)
	for rows.Next() {
		var (
			from, to  string
			rate      float64
			fetchedAt time.Time
		)
		if err := rows.Scan(&from, &to, &rate, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates = append(rates, entity.ExchangeRate{
			From:      entity.CurrencyCode(from),
			To:        entity.CurrencyCode(to),
			Rate:      rate,
			FetchedAt: fetchedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}

	return rates, nil
}
