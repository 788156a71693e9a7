package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/storetest"
)

// makePGStore uses TRAVEL_AGENT_POSTGRES_DSN when set, otherwise starts a
// throwaway container when TRAVEL_AGENT_TESTCONTAINERS=1.
func makePGStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TRAVEL_AGENT_POSTGRES_DSN")
	if dsn == "" {
		if os.Getenv("TRAVEL_AGENT_TESTCONTAINERS") != "1" {
			t.Skip("TRAVEL_AGENT_POSTGRES_DSN not set and TRAVEL_AGENT_TESTCONTAINERS!=1; skipping postgres store integration test")
		}
		dsn = startPostgres(t, ctx)
	}

	s, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "travel",
			"POSTGRES_PASSWORD": "travel",
			"POSTGRES_DB":       "travel",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://travel:travel@%s:%s/travel?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
