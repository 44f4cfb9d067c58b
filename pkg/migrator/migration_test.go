package migrator_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
	"github.com/stretchr/testify/require"
)

const (
	usersSQL = `-- tag: up
CREATE TABLE users (id INT);
CREATE INDEX users_id ON users (id);

-- tag: down
DROP TABLE users;
`

	ordersSQL = `-- tag: up
CREATE TABLE orders (id INT);
`

	seedSQL = `-- tag: seed
INSERT INTO users (id) VALUES (1);
`
)

func migrationsFS() fstest.MapFS {
	return fstest.MapFS{
		"002_orders.sql":       {Data: []byte(ordersSQL)},
		"001_users.sql":        {Data: []byte(usersSQL)},
		"003_seed.sql":         {Data: []byte(seedSQL)},
		"README.md":            {Data: []byte("# migrations")},
		"nested/004_skip.sql":  {Data: []byte(ordersSQL)},
		"005_upper.SQL":        {Data: []byte(ordersSQL)},
		"archive/old.sql.bak":  {Data: []byte("garbage")},
		"notes.sql.txt":        {Data: []byte("garbage")},
		"006_unterminated.txt": {Data: []byte("-- tag: up\nSELECT 1")},
		".sql":                 {Data: []byte(ordersSQL)},
	}
}

func TestLoadDir(t *testing.T) {
	dir, err := migrator.LoadDir(migrationsFS())
	require.NoError(t, err)

	require.Equal(t, []string{"001_users", "002_orders", "003_seed"}, dir.Names())

	users, ok := dir.File("001_users")
	require.True(t, ok)
	require.Equal(t, []string{"down", "up"}, users.Tags())

	_, ok = dir.File("004_skip")
	require.False(t, ok)
}

func TestLoadDirWithSyntaxError(t *testing.T) {
	fsys := migrationsFS()
	fsys["002_orders.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE orders (id INT);\n")}

	_, err := migrator.LoadDir(fsys)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load migration: 002_orders.sql")

	var syntaxErr *sqlfile.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	require.Equal(t, "002_orders", syntaxErr.File)
	require.Equal(t, 0, syntaxErr.Line)
	require.ErrorIs(t, err, sqlfile.ErrQueryGivenNoTag)
}

func TestLoadDirEmpty(t *testing.T) {
	dir, err := migrator.LoadDir(fstest.MapFS{})
	require.NoError(t, err)
	require.Empty(t, dir.Files)
	require.Empty(t, dir.Names())
}

func TestDirTagged(t *testing.T) {
	dir, err := migrator.LoadDir(migrationsFS())
	require.NoError(t, err)

	tests := []struct {
		tag  string
		want []string
	}{
		{tag: "up", want: []string{"001_users", "002_orders"}},
		{tag: "down", want: []string{"001_users"}},
		{tag: "seed", want: []string{"003_seed"}},
		{tag: "missing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			var names []string
			for _, f := range dir.Tagged(tt.tag) {
				names = append(names, f.Name)
			}

			require.Equal(t, tt.want, names)
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("loads a directory", func(t *testing.T) {
		path := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(path, "001_users.sql"), []byte(usersSQL), consts.ModeFile))

		dir, err := migrator.Open(path)
		require.NoError(t, err)
		require.Equal(t, []string{"001_users"}, dir.Names())
	})

	t.Run("rejects a regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "001_users.sql")
		require.NoError(t, os.WriteFile(path, []byte(usersSQL), consts.ModeFile))

		_, err := migrator.Open(path)
		require.ErrorIs(t, err, migrator.ErrNotADirectory)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := migrator.Open(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read migration directory")
	})
}

func TestDirVerify(t *testing.T) {
	t.Run("without a sum file", func(t *testing.T) {
		dir, err := migrator.LoadDir(migrationsFS())
		require.NoError(t, err)

		_, err = dir.Verify()
		require.ErrorIs(t, err, migrator.ErrNoSumFile)
	})

	t.Run("matching sum file", func(t *testing.T) {
		fsys := withSumFile(t, migrationsFS())

		dir, err := migrator.LoadDir(fsys)
		require.NoError(t, err)

		diff, err := dir.Verify()
		require.NoError(t, err)
		require.True(t, diff.Empty())
	})

	t.Run("detects changes", func(t *testing.T) {
		fsys := withSumFile(t, migrationsFS())
		fsys["002_orders.sql"] = &fstest.MapFile{Data: []byte("-- tag: up\nCREATE TABLE orders (id BIGINT);\n")}
		delete(fsys, "003_seed.sql")
		fsys["004_items.sql"] = &fstest.MapFile{Data: []byte(ordersSQL)}

		dir, err := migrator.LoadDir(fsys)
		require.NoError(t, err)

		diff, err := dir.Verify()
		require.NoError(t, err)
		require.False(t, diff.Empty())

		require.Len(t, diff.Added, 1)
		require.Equal(t, "004_items (up)", diff.Added[0].String())

		require.Len(t, diff.Removed, 1)
		require.Equal(t, "003_seed (seed)", diff.Removed[0].String())

		require.Len(t, diff.Changed, 1)
		require.Equal(t, "002_orders (up)", diff.Changed[0].String())
	})

	t.Run("tampered sum file", func(t *testing.T) {
		fsys := withSumFile(t, migrationsFS())
		fsys[consts.SumFileName].Data = append(fsys[consts.SumFileName].Data, []byte("009_extra up "+sqlfile.Hash(nil)+"\n")...)

		dir, err := migrator.LoadDir(fsys)
		require.NoError(t, err)

		_, err = dir.Verify()
		require.ErrorIs(t, err, migrator.ErrSumFileTampered)
	})
}

func withSumFile(t *testing.T, fsys fstest.MapFS) fstest.MapFS {
	t.Helper()

	dir, err := migrator.LoadDir(fsys)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = dir.Sum().WriteTo(&buf)
	require.NoError(t, err)

	fsys[consts.SumFileName] = &fstest.MapFile{Data: buf.Bytes()}
	return fsys
}
