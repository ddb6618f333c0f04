package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbPingTimeout  = 5 * time.Second
	dbBackoffStart = 500 * time.Millisecond
	dbBackoffCap   = 5 * time.Second
)

// openDatabase opens the pool and pings until the database answers or the
// configured connect window runs out. In compose setups Postgres usually
// comes up a few seconds after the app, so failed pings are logged and
// retried rather than treated as fatal.
func openDatabase(ctx context.Context, cfg Config, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deadline := time.Now().Add(cfg.DBConnectTimeout)
	backoff := dbBackoffStart

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}

		if ctx.Err() != nil || time.Now().Add(backoff).After(deadline) {
			break
		}

		logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("database not ready")

		time.Sleep(backoff)
		if backoff < dbBackoffCap {
			backoff *= 2
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", err)
}
