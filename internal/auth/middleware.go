package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware classifies each request's caller from its Authorization header
// and stores the result in the request context. It never rejects a request;
// operations decide whether the caller is sufficient via Authorize.
func Middleware(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := Anonymous()

			if header := r.Header.Get("Authorization"); header != "" {
				caller = classify(r, v, header, logger)
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func classify(r *http.Request, v Verifier, header string, logger *slog.Logger) Caller {
	token, ok := bearerToken(header)
	if !ok {
		return Rejected(ErrInvalidToken)
	}

	id, err := v.Verify(r.Context(), token)
	if err != nil {
		logger.Debug("credential rejected", "error", err, "uri", r.URL.RequestURI())
		return Rejected(err)
	}

	return Authenticated(id)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
