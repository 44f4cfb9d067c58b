package testutil

import (
	"context"
	"os/exec"
	"testing"

	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/pseudomuto/osprey/pkg/docker"
	"github.com/stretchr/testify/require"
)

// SkipIfNoDocker skips the test if Docker is not available
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	// Check if Docker binary exists
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	// Check if Docker daemon is running
	cmd := exec.CommandContext(t.Context(), "docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// StartDatabase starts a throwaway database server for driver and returns an
// open client. The container and client are cleaned up when the test ends.
// Tests are skipped in short mode or when Docker is unavailable.
func StartDatabase(t *testing.T, driver database.Driver) *database.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	SkipIfNoDocker(t)

	ctx := context.Background()
	container := docker.NewWithOptions(docker.DockerOptions{Driver: driver})
	require.NoError(t, container.Start(ctx), "Failed to start %s container", driver)
	t.Cleanup(func() { _ = container.Stop(context.Background()) })

	opts, err := container.ConnectOptions(ctx)
	require.NoError(t, err, "Failed to get container DSN")

	client, err := database.Open(ctx, opts)
	require.NoError(t, err, "Failed to connect to %s container", driver)
	t.Cleanup(func() { _ = client.Close() })

	return client
}
