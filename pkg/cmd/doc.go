// Package cmd provides the CLI commands for osprey.
//
// Every command is a function returning a *cli.Command, following the
// urfave/cli/v3 pattern, and is registered with fx in the "commands" group so
// that Run can assemble the root command. Commands receive the project
// configuration through fx; flags and environment variables override it.
//
// # Available Commands
//
//   - migrate: apply the pending groups of a tag
//   - sanity: verify the migration table against the SQL files
//   - status: show the state of every file and tag
//   - inspect: parse the SQL files and print their tags and hashes
//   - rehash: regenerate osprey.sum
//   - verify: check the SQL files against osprey.sum
//   - init: scaffold a config file and migrations directory
//   - dev: start a throwaway database in Docker and migrate it
//
// # Global Options
//
//   - --log-level: debug, info, warn or error
//   - --log-format: text or json
//   - --version: display version information
//
// Commands that talk to a database share the connection flags (--driver,
// --dsn, --host, --port, --user, --password, --database, --table and the TLS
// files). Postgres settings may also come from the POSTGRES_HOST,
// POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DB environment variables.
//
// Command output is written to the root command's Writer while logs go to
// stderr through slog, so output can be piped without log noise.
package cmd
