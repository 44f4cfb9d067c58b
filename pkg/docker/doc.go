// Package docker runs throwaway database servers for trying out and testing
// migrations.
//
// Containers are managed with testcontainers-go. Postgres and ClickHouse are
// supported; SQLite needs no server.
//
// # Usage Example
//
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Driver:  database.Postgres,
//		Version: "16",
//	})
//
//	if err := container.Start(ctx); err != nil {
//		return err
//	}
//	defer container.Stop(ctx)
//
//	opts, err := container.ConnectOptions(ctx)
//	if err != nil {
//		return err
//	}
//
//	client, err := database.Open(ctx, opts)
package docker
