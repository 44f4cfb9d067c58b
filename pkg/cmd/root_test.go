package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestNewApp(t *testing.T) {
	version := &Version{Version: "1.2.3", Commit: "abc123", Timestamp: "2025-03-14"}
	commands := []*cli.Command{
		migrate(migrateParams{Config: config.Default()}),
		sanityCmd(sanityParams{Config: config.Default()}),
	}

	t.Run("version", func(t *testing.T) {
		var buf bytes.Buffer
		app := NewApp(config.Default(), version, commands)
		app.Writer = &buf

		require.NoError(t, app.Run(context.Background(), []string{"osprey", "--version"}))
		require.Contains(t, buf.String(), "Version: 1.2.3")
		require.Contains(t, buf.String(), "Commit: abc123")
		require.Contains(t, buf.String(), "Date: 2025-03-14")
	})

	t.Run("commands are registered", func(t *testing.T) {
		app := NewApp(config.Default(), version, commands)
		require.NotNil(t, app.Command("migrate"))
		require.NotNil(t, app.Command("apply"))
		require.NotNil(t, app.Command("sanity"))
	})

	t.Run("invalid log level", func(t *testing.T) {
		var buf bytes.Buffer
		app := NewApp(config.Default(), version, commands)
		app.Writer = &buf

		err := app.Run(context.Background(), []string{"osprey", "--log-level", "loud", "sanity"})
		require.EqualError(t, err, `invalid log level: "loud"`)
	})
}
