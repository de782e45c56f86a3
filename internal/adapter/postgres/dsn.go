package postgres

import (
	"fmt"
	"net/url"
	"strings"

	"subpage-service/pkg/config"
)

func BuildDSN(cfg config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Postgres.Host, cfg.Postgres.Port),
		Path:     cfg.Postgres.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.Postgres.SSLMode),
	}
	return u.String()
}

// migrationDSN swaps the scheme for the one golang-migrate's pgx/v5 driver registers.
func migrationDSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
