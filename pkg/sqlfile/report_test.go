package sqlfile_test

import (
	"bytes"
	"testing"

	. "github.com/pseudomuto/osprey/pkg/sqlfile"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestFileWriteTo(t *testing.T) {
	src := `-- tag: up
CREATE TABLE users (id INT);
CREATE INDEX users_id ON users (id);

-- tag: down
DROP TABLE users;
`

	file, err := ParseString("001_users", src)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := file.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	golden.Assert(t, buf.String(), "report.golden")
}
