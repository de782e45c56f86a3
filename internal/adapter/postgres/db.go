package postgres

import (
	"context"
	"fmt"
	"time"

	"subpage-service/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const maxConnectAttempts = 5

func InitDBPool(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < maxConnectAttempts; i++ {
		logger.Infof("DB connection attempt #%d", i+1)

		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err = pgxpool.NewWithConfig(attemptCtx, poolConfig)
		if err == nil {
			err = pool.Ping(attemptCtx)
			if err == nil {
				cancel()
				logger.Infof("Successfully connected to DB on attempt #%d", i+1)
				return pool, nil
			}
			pool.Close()
		}
		cancel()
		logger.Warnf("DB not ready on attempt #%d: %v", i+1, err)

		if i < maxConnectAttempts-1 {
			wait := time.Second * time.Duration(i+1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, fmt.Errorf("connect DB: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to create and ping DB pool after %d attempts: %w", maxConnectAttempts, err)
}
