package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultRetryInterval = 500 * time.Millisecond

// ping checks the connection, retrying with exponential backoff while the
// server is still starting up.
func ping(ctx context.Context, db *sql.DB, retries uint64, interval time.Duration) error {
	if retries == 0 {
		return db.PingContext(ctx)
	}

	if interval <= 0 {
		interval = defaultRetryInterval
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = interval
	exp.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx)

	return backoff.RetryNotify(
		func() error { return db.PingContext(ctx) },
		policy,
		func(err error, wait time.Duration) {
			slog.Warn("Database not ready, retrying", "err", err, "wait", wait)
		},
	)
}
