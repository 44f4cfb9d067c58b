package cmd

import (
	"github.com/pseudomuto/osprey/pkg/cmd/testutil"
)

var (
	usersMigration = testutil.MigrationFile{
		Name: "001_users",
		SQL: `-- tag: up
CREATE TABLE users (id INT);
CREATE INDEX users_id ON users (id);

-- tag: down
DROP TABLE users;
`,
	}

	ordersMigration = testutil.MigrationFile{
		Name: "002_orders",
		SQL: `-- tag: up
CREATE TABLE orders (
  id INT,
  user_id INT
);

-- tag: seed
INSERT INTO orders (id, user_id) VALUES (1, 1);
`,
	}
)
