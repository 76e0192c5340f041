package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/guidesync/pkg/database"
	"github.com/JaimeStill/guidesync/pkg/lifecycle"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func unreachable(t *testing.T) database.System {
	t.Helper()
	cfg := database.Config{Host: "127.0.0.1", Port: 1, ConnTimeout: "1s"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	sys, err := database.New(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { sys.Connection().Close() })
	return sys
}

func TestNewSetsPoolParams(t *testing.T) {
	cfg := database.Config{MaxOpenConns: 42, MaxIdleConns: 7}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	sys, err := database.New(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sys.Connection().Close()

	if got := sys.Connection().Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
	if sys.Ready() {
		t.Error("system should not be ready before a successful ping")
	}
}

func TestPingUnreachable(t *testing.T) {
	sys := unreachable(t)

	err := sys.Ping(context.Background())
	if !errors.Is(err, database.ErrNotReady) {
		t.Fatalf("Ping = %v, want ErrNotReady", err)
	}
	if sys.Ready() {
		t.Error("Ready after failed ping")
	}
}

func TestStartTracksReadiness(t *testing.T) {
	sys := unreachable(t)
	lc := lifecycle.New()

	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("coordinator should report not ready while the database is unreachable")
	}
}
