package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 5 * time.Minute

type (
	// DockerOptions represents options for running a throwaway database.
	DockerOptions struct {
		// Driver selects the database image. Defaults to Postgres. SQLite has no
		// server and is rejected.
		Driver database.Driver

		// Version is the image tag to run (default: consts.DefaultPostgresVersion
		// or consts.DefaultClickHouseVersion).
		Version string

		// Database is the database created inside the container.
		Database string

		// Username and Password are the credentials created in the container.
		Username string
		Password string
	}

	// Container manages a database container for migration testing.
	Container struct {
		options   DockerOptions
		container dsnContainer
	}

	dsnContainer interface {
		Terminate(context.Context, ...testcontainers.TerminateOption) error
	}
)

// New creates a new Postgres container with default options.
//
// Example:
//
//	container := docker.New()
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func New() *Container {
	return NewWithOptions(DockerOptions{})
}

// NewWithOptions creates a new container with custom options.
//
// Example:
//
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Driver:  database.ClickHouse,
//		Version: "25.7",
//	})
func NewWithOptions(opts DockerOptions) *Container {
	if opts.Driver == "" {
		opts.Driver = database.Postgres
	}

	if opts.Database == "" {
		opts.Database = defaultDatabase(opts.Driver)
	}

	if opts.Username == "" {
		opts.Username = defaultUsername(opts.Driver)
	}

	if opts.Password == "" && opts.Driver == database.Postgres {
		opts.Password = "postgres"
	}

	return &Container{options: opts}
}

// Options returns the effective options.
func (c *Container) Options() DockerOptions {
	return c.options
}

// Image returns the image reference the container runs.
func (c *Container) Image() string {
	version := c.options.Version

	switch c.options.Driver {
	case database.ClickHouse:
		if version == "" {
			version = consts.DefaultClickHouseVersion
		}
		return fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", version)
	default:
		if version == "" {
			version = consts.DefaultPostgresVersion
		}
		return fmt.Sprintf("postgres:%s-alpine", version)
	}
}

// Start starts the container and waits until it accepts connections.
func (c *Container) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	var (
		ctr dsnContainer
		err error
	)

	switch c.options.Driver {
	case database.Postgres:
		ctr, err = c.startPostgres(ctx)
	case database.ClickHouse:
		ctr, err = c.startClickHouse(ctx)
	default:
		return errors.Errorf("no container available for driver: %s", c.options.Driver)
	}

	if err != nil {
		return errors.Wrapf(err, "failed to start %s container", c.options.Driver)
	}

	c.container = ctr
	return nil
}

func (c *Container) startPostgres(ctx context.Context) (dsnContainer, error) {
	return postgres.Run(ctx,
		c.Image(),
		postgres.WithDatabase(c.options.Database),
		postgres.WithUsername(c.options.Username),
		postgres.WithPassword(c.options.Password),
		testcontainers.WithWaitStrategyAndDeadline(
			startupTimeout,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(nat.Port("5432/tcp")),
		),
	)
}

func (c *Container) startClickHouse(ctx context.Context) (dsnContainer, error) {
	return clickhouse.Run(ctx,
		c.Image(),
		clickhouse.WithUsername(c.options.Username),
		clickhouse.WithPassword(c.options.Password),
		clickhouse.WithDatabase(c.options.Database),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			startupTimeout,
			wait.
				NewHTTPStrategy("/").
				WithPort(nat.Port("8123/tcp")).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	)
}

// Stop stops and removes the container.
func (c *Container) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	if err != nil {
		return errors.Wrapf(err, "failed to stop %s container", c.options.Driver)
	}

	return nil
}

// GetDSN returns a connection string for the running database.
func (c *Container) GetDSN(ctx context.Context) (string, error) {
	switch ctr := c.container.(type) {
	case nil:
		return "", errors.New("container is not running")
	case *postgres.PostgresContainer:
		dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
		return dsn, errors.Wrap(err, "failed to get connection string")
	case *clickhouse.ClickHouseContainer:
		dsn, err := ctr.ConnectionString(ctx)
		return dsn, errors.Wrap(err, "failed to get connection string")
	default:
		return "", errors.Errorf("unexpected container type %T", ctr)
	}
}

// ConnectOptions returns database options for connecting to the container.
func (c *Container) ConnectOptions(ctx context.Context) (database.Options, error) {
	dsn, err := c.GetDSN(ctx)
	if err != nil {
		return database.Options{}, err
	}

	return database.Options{
		Driver:         c.options.Driver,
		DSN:            dsn,
		ConnectRetries: 5,
	}, nil
}

// IsRunning returns true if the container is currently running.
func (c *Container) IsRunning() bool {
	return c.container != nil
}

func defaultDatabase(driver database.Driver) string {
	if driver == database.ClickHouse {
		return "default"
	}

	return "postgres"
}

func defaultUsername(driver database.Driver) string {
	if driver == database.ClickHouse {
		return "default"
	}

	return "postgres"
}
