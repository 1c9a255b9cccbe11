package cluster

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

// ContainerSupervisor spawns a PostgreSQL backend in a Docker container
// via testcontainers, used by integration tests and by --backend-dsn
// callers that prefer a disposable container over an embedded binary.
// Grounded directly on cmd/inspect_test.go's postgres.Run/WithWaitStrategy
// usage.
type ContainerSupervisor struct {
	// Image defaults to "postgres:17" if empty.
	Image string
}

type containerHandle struct {
	container *postgres.PostgresContainer
	dsn       string
	readyCh   chan struct{}
}

func (s *ContainerSupervisor) Start(ctx context.Context, cfg *Config) (Handle, error) {
	image := s.Image
	if image == "" {
		image = "postgres:17"
	}
	database := cfg.TenantID
	if database == "" {
		database = "arcql"
	}

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(database),
		postgres.WithUsername("arcql"),
		postgres.WithPassword("arcql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("cluster: failed to start backend container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("cluster: failed to read container connection string: %w", err)
	}

	h := &containerHandle{container: container, dsn: dsn, readyCh: make(chan struct{})}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return h.pollReady(gctx, dsn)
	})
	if cfg.EmitServerStatus != "" {
		group.Go(func() error {
			return emitServerStatus(gctx, cfg.EmitServerStatus, dsn)
		})
	}
	if err := group.Wait(); err != nil {
		container.Terminate(ctx)
		return nil, err
	}

	return h, nil
}

func (h *containerHandle) pollReady(ctx context.Context, dsn string) error {
	deadline := time.Now().Add(30 * time.Second)
	err := PollUntilReady(ctx, deadline, func() (bool, error) {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return false, nil
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	close(h.readyCh)
	return nil
}

func (h *containerHandle) WaitReady(ctx context.Context) error {
	select {
	case <-h.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *containerHandle) Shutdown(ctx context.Context) error {
	if err := h.container.Terminate(ctx); err != nil {
		return fmt.Errorf("cluster: failed to terminate backend container: %w", err)
	}
	return nil
}

func (h *containerHandle) DSN() string { return h.dsn }
