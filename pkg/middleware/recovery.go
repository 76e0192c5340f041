package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/guidesync/pkg/handlers"
)

// Recovery returns middleware that converts a panicking handler into a 500 envelope.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered", "panic", rec, "uri", r.URL.RequestURI())
				handlers.RespondError(
					w, logger,
					http.StatusInternalServerError,
					errors.New(fmt.Sprint(rec)),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
