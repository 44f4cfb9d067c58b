package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	// Postgres connects through pgx's database/sql driver.
	Postgres Driver = "postgres"

	// SQLite connects through the pure Go modernc.org/sqlite driver.
	SQLite Driver = "sqlite"

	// ClickHouse connects through clickhouse-go's database/sql driver.
	ClickHouse Driver = "clickhouse"
)

type (
	// Driver names a supported database backend.
	Driver string

	// Rows is the subset of *sql.Rows used to read query results.
	Rows interface {
		Next() bool
		Scan(...any) error
		Close() error
		Err() error
	}

	// DB defines the database operations needed to run migrations and read or
	// write the migration ledger. *Client satisfies it; tests can provide their
	// own implementation.
	DB interface {
		Exec(context.Context, string, ...any) error
		Query(context.Context, string, ...any) (Rows, error)
	}

	// Options configures how Open connects to a database.
	Options struct {
		// Driver selects the backend. Defaults to Postgres.
		Driver Driver

		// DSN is a full connection string. When set, the individual connection
		// fields below are ignored.
		DSN string

		Host     string
		Port     int
		User     string
		Password string
		Name     string

		// TLS optionally enables mutual TLS for Postgres and ClickHouse.
		TLS TLSOptions

		// ConnectRetries is the number of additional ping attempts made while the
		// server is not yet accepting connections.
		ConnectRetries uint64

		// RetryInterval is the initial wait between ping attempts.
		RetryInterval time.Duration
	}

	// Client is a database connection used for executing migration statements
	// and reading or writing the migration ledger.
	Client struct {
		db     *sql.DB
		driver Driver
	}
)

// Valid reports whether d is a supported driver.
func (d Driver) Valid() bool {
	switch d {
	case Postgres, SQLite, ClickHouse:
		return true
	default:
		return false
	}
}

// Open connects to the database described by opts and verifies the connection
// with a ping, retrying according to opts.ConnectRetries.
//
// Example:
//
//	client, err := database.Open(ctx, database.Options{
//		Driver:   database.Postgres,
//		Host:     "localhost",
//		User:     "postgres",
//		Password: "postgres",
//		Name:     "app",
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Driver == "" {
		opts.Driver = Postgres
	}

	if !opts.Driver.Valid() {
		return nil, errors.Errorf("unsupported database driver: %s", opts.Driver)
	}

	dsn, err := opts.ResolveDSN()
	if err != nil {
		return nil, err
	}

	db, err := openDB(opts, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", opts.Driver)
	}

	if err := ping(ctx, db, opts.ConnectRetries, opts.RetryInterval); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", opts.Driver)
	}

	client := &Client{db: db, driver: opts.Driver}
	logger := slog.With("driver", opts.Driver, "dsn", Redact(dsn))

	version, err := client.Version(ctx)
	if err != nil {
		logger.Debug("Connected to database", "version_err", err)
		return client, nil
	}

	logger.Debug("Connected to database", "version", version)
	return client, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, driver Driver) *Client {
	return &Client{db: db, driver: driver}
}

func openDB(opts Options, dsn string) (*sql.DB, error) {
	switch opts.Driver {
	case Postgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "invalid postgres DSN")
		}

		if opts.TLS.Enabled() {
			tlsCfg, err := opts.TLS.Config()
			if err != nil {
				return nil, err
			}
			cfg.TLSConfig = tlsCfg
		}

		return stdlib.OpenDB(*cfg), nil

	case ClickHouse:
		chOpts, err := clickhouse.ParseDSN(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "invalid clickhouse DSN")
		}

		if opts.TLS.Enabled() {
			tlsCfg, err := opts.TLS.Config()
			if err != nil {
				return nil, err
			}
			chOpts.TLS = tlsCfg
		}

		return clickhouse.OpenDB(chOpts), nil

	default:
		return sql.Open("sqlite", dsn)
	}
}

// Driver returns the backend this client is connected to.
func (c *Client) Driver() Driver {
	return c.driver
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// Query runs a statement that returns rows. Callers must close the result.
func (c *Client) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Version returns the server's version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	query := "SELECT version()"
	if c.driver == SQLite {
		query = "SELECT sqlite_version()"
	}

	var version string
	if err := c.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", errors.Wrap(err, "failed to query server version")
	}

	return version, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}
