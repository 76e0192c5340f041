// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies domain systems share: lifecycle coordination,
// logging, the database pool, object storage, and the identity provider.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/internal/config"
	"github.com/JaimeStill/guidesync/pkg/database"
	"github.com/JaimeStill/guidesync/pkg/lifecycle"
	"github.com/JaimeStill/guidesync/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Issuer is nil when the identity provider only verifies externally issued tokens.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Verifier  auth.Verifier
	Issuer    auth.Issuer
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	verifier, issuer, err := auth.New(lc.Context(), &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	logger.Info("identity provider configured", "provider", cfg.Auth.Provider, "issues_tokens", issuer != nil)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Verifier:  verifier,
		Issuer:    issuer,
	}, nil
}

// Start registers the database and storage systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
