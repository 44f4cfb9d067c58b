package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// DefaultDir is the directory migrations are read from
	DefaultDir = "./migrations/"

	// DefaultTable is the name of the migration ledger table
	DefaultTable = "_migrations"

	// DefaultTag is the tag applied by migrate when none is given
	DefaultTag = "up"

	// DefaultConfigFile is the config file looked up in the working directory
	DefaultConfigFile = "osprey.yaml"

	// SumFileName is the integrity file written into the migrations directory
	SumFileName = "osprey.sum"

	// DefaultPostgresVersion is the image tag used for throwaway Postgres containers
	DefaultPostgresVersion = "16"

	// DefaultClickHouseVersion is the image tag used for throwaway ClickHouse containers
	DefaultClickHouseVersion = "25.7"
)
