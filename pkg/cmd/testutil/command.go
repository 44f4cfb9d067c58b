package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes a command with test context
func RunCommand(t *testing.T, command *cli.Command, args []string) error {
	t.Helper()

	_, err := RunCommandWithOutput(t, command, args)
	return err
}

// RunCommandWithOutput executes a command and returns everything it wrote to
// the root command's writer.
func RunCommandWithOutput(t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()

	return RunCommandWithContext(context.Background(), t, command, args)
}

// RunCommandWithContext executes a command with a custom context
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	// Create a test CLI app
	app := &cli.Command{
		Name:      "test",
		Writer:    &out,
		ErrWriter: &out,
		Commands:  []*cli.Command{command},
	}

	// Prepend command name to args
	fullArgs := append([]string{"test", command.Name}, args...)

	err := app.Run(ctx, fullArgs)
	return out.String(), err
}
