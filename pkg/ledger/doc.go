// Package ledger records which tagged statement groups have been applied.
//
// The ledger is append-only: each successful application of a (file, tag)
// group adds one Record holding the group's content hash at that moment. The
// hash is never recomputed, which is what lets the sanity checker detect files
// that were edited after they were applied.
//
// Two implementations are provided. SQL stores records in a table of the
// database being migrated (Postgres, SQLite or ClickHouse). Memory keeps them
// in process and backs dry runs and tests.
//
// The default table layout, shown for Postgres, is:
//
//	CREATE TABLE IF NOT EXISTS "_migrations" (
//	    sequence SERIAL PRIMARY KEY,
//	    file_name TEXT,
//	    tag TEXT NOT NULL,
//	    applied_at DATE NOT NULL DEFAULT CURRENT_DATE,
//	    content_hash TEXT
//	)
//
// There is no uniqueness constraint on (file_name, tag) and no locking, so two
// runners racing on the same database may both apply a group.
package ledger
