//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"fastfeet/internal/logx"
	"fastfeet/internal/repository"
)

// Shared by every integration test in the package; the schema is migrated once.
var (
	tcPool *pgxpool.Pool
	tcDSN  string
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	teardown, err := startDatabase(ctx)
	if err != nil {
		teardown()
		log.Fatalf("integration database: %v", err)
	}
	code := m.Run()
	teardown()
	os.Exit(code)
}

// startDatabase runs postgres in a container, opens tcPool and applies migrations.
// The returned teardown is safe to call after a partial failure.
func startDatabase(ctx context.Context) (func(), error) {
	var undo []func()
	teardown := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fastfeet"),
		postgres.WithUsername("fastfeet"),
		postgres.WithPassword("fastfeet"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return teardown, fmt.Errorf("start container: %w", err)
	}
	undo = append(undo, func() {
		if err := pg.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres container: %v", err)
		}
	})

	if tcDSN, err = pg.ConnectionString(ctx, "sslmode=disable"); err != nil {
		return teardown, fmt.Errorf("connection string: %w", err)
	}
	if tcPool, err = repository.NewPool(ctx, tcDSN); err != nil {
		return teardown, err
	}
	undo = append(undo, tcPool.Close)

	if err := repository.Migrate(tcDSN, logx.Nop()); err != nil {
		return teardown, fmt.Errorf("migrate: %w", err)
	}
	return teardown, nil
}
