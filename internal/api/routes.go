package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/guidesync/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, logger *slog.Logger) {
	patterns := routes.Register(
		mux,
		domain.Guidelines.Handler().Routes(),
		domain.Users.Handler().Routes(),
	)
	logger.Debug("routes registered", "count", len(patterns), "routes", patterns)
}
