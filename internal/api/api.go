// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/internal/config"
	"github.com/JaimeStill/guidesync/internal/infrastructure"
	"github.com/JaimeStill/guidesync/pkg/middleware"
	"github.com/JaimeStill/guidesync/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Middleware runs outermost first: panic recovery, request logging, CORS,
// then caller classification.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime.Logger)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recovery(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(auth.Middleware(runtime.Verifier, runtime.Logger))

	return m, nil
}
