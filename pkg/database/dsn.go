package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

var defaultPorts = map[Driver]int{
	Postgres:   5432,
	ClickHouse: 9000,
}

// ResolveDSN returns the connection string for o. An explicit DSN wins;
// otherwise one is assembled from the host, credentials and database name.
// SQLite treats Name as the database file path.
func (o Options) ResolveDSN() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}

	driver := o.Driver
	if driver == "" {
		driver = Postgres
	}

	if driver == SQLite {
		if o.Name == "" {
			return "", errors.New("sqlite requires a database file path")
		}
		return o.Name, nil
	}

	if o.Host == "" {
		return "", errors.Errorf("%s requires a host", driver)
	}

	host := o.Host
	if o.Port > 0 {
		host = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	} else if driver == ClickHouse {
		host = net.JoinHostPort(o.Host, strconv.Itoa(defaultPorts[ClickHouse]))
	}

	u := url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + o.Name,
	}

	if driver == ClickHouse {
		u.Scheme = "clickhouse"
	}

	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}

	return u.String(), nil
}

// Redact masks the password in a URL-style DSN so it can be logged.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}

	return u.Redacted()
}
