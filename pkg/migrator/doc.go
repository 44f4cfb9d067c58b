// Package migrator loads a directory of tagged SQL files and records its
// state in a sum file.
//
// A migration directory is flat: every file directly inside it whose name
// ends in .sql is parsed with the sqlfile package, and files are applied in
// lexical order of their names. Prefixing names with a sequence number
// (001_users.sql, 002_orders.sql) keeps that order meaningful.
//
// The sum file (osprey.sum) lists the content hash of every tag group in
// every file, preceded by a total hash over all entries:
//
//	h1:6j8vUrv1yNfA5W4l2y1xw0H2x8p7nqgkJ0bB4Zq3p0E=
//	001_users down 3C9B1A...
//	001_users up 935DBB...
//	002_orders up 0F1E2D...
//
// Committing the sum file alongside the migrations lets reviewers and CI
// notice edits to SQL that may already have been applied somewhere, without
// needing a database connection.
//
// Example:
//
//	dir, err := migrator.Open("./migrations")
//	if err != nil {
//		return err
//	}
//
//	diff, err := dir.Verify()
//	if err != nil {
//		return err
//	}
//
//	for _, e := range diff.Changed {
//		fmt.Println("changed:", e)
//	}
package migrator
