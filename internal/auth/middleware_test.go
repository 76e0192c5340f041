package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/guidesync/internal/auth"
)

type stubVerifier struct {
	tokens map[string]auth.Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

func TestMiddlewareClassifiesCaller(t *testing.T) {
	v := stubVerifier{tokens: map[string]auth.Identity{
		"admin-token":     admin,
		"clinician-token": clinician,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		header    string
		wantClass auth.Class
		wantErr   bool
	}{
		{"no header", "", auth.ClassAnonymous, false},
		{"admin bearer", "Bearer admin-token", auth.ClassAdmin, false},
		{"lowercase scheme", "bearer clinician-token", auth.ClassAuthenticated, false},
		{"unknown token", "Bearer nope", auth.ClassAnonymous, true},
		{"basic scheme", "Basic dXNlcjpwYXNz", auth.ClassAnonymous, true},
		{"empty bearer", "Bearer ", auth.ClassAnonymous, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Caller
			h := auth.Middleware(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.CallerFrom(r.Context())
			}))

			req := httptest.NewRequest("GET", "/guidelines", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, middleware must not reject", rec.Code)
			}
			if got.Class() != tt.wantClass {
				t.Errorf("class = %s, want %s", got.Class(), tt.wantClass)
			}
			if tt.wantErr != (got.Err != nil) {
				t.Errorf("caller err = %v, wantErr %v", got.Err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(got.Err, auth.ErrInvalidToken) {
				t.Errorf("caller err = %v, want ErrInvalidToken", got.Err)
			}
		})
	}
}

func TestCallerFromEmptyContext(t *testing.T) {
	if c := auth.CallerFrom(context.Background()); c.Class() != auth.ClassAnonymous || c.Subject() != "" {
		t.Errorf("caller = %+v, want anonymous", c)
	}
}
