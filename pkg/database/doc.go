// Package database opens connections to the databases osprey migrates.
//
// Three drivers are supported through database/sql:
//
//   - postgres, using github.com/jackc/pgx/v5
//   - sqlite, using modernc.org/sqlite
//   - clickhouse, using github.com/ClickHouse/clickhouse-go/v2
//
// The DB interface is the narrow capability the rest of osprey depends on:
// executing a statement and running a query. *Client implements it.
package database
