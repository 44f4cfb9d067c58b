package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/database"
	"gopkg.in/yaml.v3"
)

type (
	// Database holds the connection settings for the database being migrated.
	Database struct {
		// Driver is one of postgres, sqlite or clickhouse.
		Driver string `yaml:"driver" toml:"driver"`

		// DSN is a complete connection string. When set, the individual
		// connection fields are ignored.
		DSN string `yaml:"dsn,omitempty" toml:"dsn,omitempty"`

		Host     string `yaml:"host,omitempty" toml:"host,omitempty"`
		Port     int    `yaml:"port,omitempty" toml:"port,omitempty"`
		User     string `yaml:"user,omitempty" toml:"user,omitempty"`
		Password string `yaml:"password,omitempty" toml:"password,omitempty"`
		Name     string `yaml:"name,omitempty" toml:"name,omitempty"`

		// CAFile, CertFile and KeyFile enable mutual TLS when all are set.
		CAFile   string `yaml:"ca_file,omitempty" toml:"ca_file,omitempty"`
		CertFile string `yaml:"cert_file,omitempty" toml:"cert_file,omitempty"`
		KeyFile  string `yaml:"key_file,omitempty" toml:"key_file,omitempty"`

		// ConnectRetries is how many times to retry the initial connection.
		ConnectRetries uint64 `yaml:"connect_retries,omitempty" toml:"connect_retries,omitempty"`
	}

	// Log configures the process logger.
	Log struct {
		// Level is one of debug, info, warn or error.
		Level string `yaml:"level,omitempty" toml:"level,omitempty"`

		// Format is text or json.
		Format string `yaml:"format,omitempty" toml:"format,omitempty"`
	}

	// Metrics configures the optional Prometheus textfile written after a run.
	Metrics struct {
		File string `yaml:"file,omitempty" toml:"file,omitempty"`
	}

	// Config represents the osprey project configuration.
	Config struct {
		// Dir is the directory containing tagged SQL files.
		Dir string `yaml:"dir" toml:"dir"`

		// Table is the name of the migration ledger table.
		Table string `yaml:"table" toml:"table"`

		// Tag is the default tag applied by migrate.
		Tag string `yaml:"tag" toml:"tag"`

		Database Database `yaml:"database" toml:"database"`
		Log      Log      `yaml:"log,omitempty" toml:"log,omitempty"`
		Metrics  Metrics  `yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	}
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a YAML configuration from r, filling in defaults for any
// omitted settings.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	dir: db/migrations
//	database:
//	  driver: postgres
//	  host: localhost
//	`))
//	if err != nil {
//		return err
//	}
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadTOML parses a TOML configuration from r.
func LoadTOML(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads the configuration at path. Files ending in .toml are
// decoded as TOML; everything else is treated as YAML.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadTOML(f)
	}

	return LoadConfig(f)
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = consts.DefaultDir
	}
	if c.Table == "" {
		c.Table = consts.DefaultTable
	}
	if c.Tag == "" {
		c.Tag = consts.DefaultTag
	}
	if c.Database.Driver == "" {
		c.Database.Driver = string(database.Postgres)
	}

	if c.Database.Driver == string(database.Postgres) && c.Database.DSN == "" {
		if c.Database.Host == "" {
			c.Database.Host = "localhost"
		}
		if c.Database.User == "" {
			c.Database.User = "postgres"
		}
		if c.Database.Password == "" {
			c.Database.Password = "postgres"
		}
		if c.Database.Name == "" {
			c.Database.Name = "postgres"
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DatabaseOptions converts the database settings into options for
// database.Open.
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Driver:   database.Driver(c.Database.Driver),
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Name:     c.Database.Name,
		TLS: database.TLSOptions{
			CAFile:   c.Database.CAFile,
			CertFile: c.Database.CertFile,
			KeyFile:  c.Database.KeyFile,
		},
		ConnectRetries: c.Database.ConnectRetries,
		RetryInterval:  time.Second,
	}
}
