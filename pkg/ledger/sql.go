package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/pseudomuto/osprey/pkg/utils"
)

const selectColumns = "sequence, file_name, tag, applied_at, content_hash"

var createTable = map[database.Driver]string{
	database.Postgres: `CREATE TABLE IF NOT EXISTS %s (
    sequence SERIAL PRIMARY KEY,
    file_name TEXT,
    tag TEXT NOT NULL,
    applied_at DATE NOT NULL DEFAULT CURRENT_DATE,
    content_hash TEXT
)`,
	database.SQLite: `CREATE TABLE IF NOT EXISTS %s (
    sequence INTEGER PRIMARY KEY AUTOINCREMENT,
    file_name TEXT,
    tag TEXT NOT NULL,
    applied_at DATE NOT NULL DEFAULT CURRENT_DATE,
    content_hash TEXT
)`,
	database.ClickHouse: `CREATE TABLE IF NOT EXISTS %s (
    sequence Int64,
    file_name String,
    tag String,
    applied_at Date DEFAULT today(),
    content_hash String
)
ENGINE = MergeTree()
ORDER BY sequence`,
}

// SQL is a Ledger stored in a table of the database being migrated.
type SQL struct {
	db     database.DB
	driver database.Driver
	table  string
}

// NewSQL creates a ledger backed by table. The table name may be schema
// qualified (e.g. "public._migrations") and is validated before use.
//
// Example:
//
//	client, err := database.Open(ctx, opts)
//	if err != nil {
//		return err
//	}
//
//	l, err := ledger.NewSQL(client, client.Driver(), "_migrations")
//	if err != nil {
//		return err
//	}
//
//	if err := l.EnsureSchema(ctx); err != nil {
//		return err
//	}
func NewSQL(db database.DB, driver database.Driver, table string) (*SQL, error) {
	if _, ok := createTable[driver]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", driver)
	}

	if !utils.IsValidIdentifier(table) {
		return nil, errors.Errorf("invalid migration table name: %q", table)
	}

	return &SQL{db: db, driver: driver, table: table}, nil
}

func (s *SQL) quotedTable() string {
	if s.driver == database.ClickHouse {
		return utils.BacktickIdentifier(s.table)
	}

	return utils.QuoteIdentifier(s.table, '"')
}

func (s *SQL) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(createTable[s.driver], s.quotedTable())
	if err := s.db.Exec(ctx, ddl); err != nil {
		return errors.Wrapf(err, "failed to create migration table: %s", s.table)
	}

	return nil
}

func (s *SQL) Append(ctx context.Context, fileName, tag, contentHash string) error {
	if s.driver == database.ClickHouse {
		return s.appendWithSequence(ctx, fileName, tag, contentHash)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (file_name, tag, content_hash) VALUES (%s, %s, %s)",
		s.quotedTable(),
		s.driver.Placeholder(1),
		s.driver.Placeholder(2),
		s.driver.Placeholder(3),
	)

	if err := s.db.Exec(ctx, query, fileName, tag, contentHash); err != nil {
		return errors.Wrapf(err, "failed to record migration %s (%s)", fileName, tag)
	}

	return nil
}

// appendWithSequence assigns the next sequence itself for stores without an
// auto-incrementing column.
func (s *SQL) appendWithSequence(ctx context.Context, fileName, tag, contentHash string) error {
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT max(sequence) FROM %s", s.quotedTable()))
	if err != nil {
		return errors.Wrap(err, "failed to read last migration sequence")
	}

	var last sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&last); err != nil {
			_ = rows.Close()
			return errors.Wrap(err, "failed to scan last migration sequence")
		}
	}

	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return errors.Wrap(err, "failed to read last migration sequence")
	}
	_ = rows.Close()

	query := fmt.Sprintf(
		"INSERT INTO %s (sequence, file_name, tag, content_hash) VALUES (?, ?, ?, ?)",
		s.quotedTable(),
	)

	if err := s.db.Exec(ctx, query, last.Int64+1, fileName, tag, contentHash); err != nil {
		return errors.Wrapf(err, "failed to record migration %s (%s)", fileName, tag)
	}

	return nil
}

func (s *SQL) ListByTag(ctx context.Context, tag string) ([]*Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE tag = %s ORDER BY sequence",
		selectColumns,
		s.quotedTable(),
		s.driver.Placeholder(1),
	)

	return s.list(ctx, query, tag)
}

func (s *SQL) ListAll(ctx context.Context) ([]*Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY sequence", selectColumns, s.quotedTable())
	return s.list(ctx, query)
}

func (s *SQL) list(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query migration table: %s", s.table)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		var (
			r        Record
			fileName sql.NullString
			hash     sql.NullString
			applied  date
		)

		if err := rows.Scan(&r.Sequence, &fileName, &r.Tag, &applied, &hash); err != nil {
			return nil, errors.Wrap(err, "failed to scan migration record")
		}

		r.FileName = fileName.String
		r.ContentHash = hash.String
		r.AppliedAt = applied.Time
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read migration records")
	}

	return records, nil
}

// date scans DATE columns, which drivers return as time.Time, string or
// []byte depending on the backend.
type date struct {
	time.Time
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02 15:04:05.999999999-07:00",
}

func (d *date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return errors.Errorf("cannot scan %T into a date", src)
	}
}

func (d *date) parse(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return errors.Errorf("unrecognized date format: %q", s)
}
