package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/guidesync/internal/auth"
)

// System defines the public contract for login and identity operations.
type System interface {
	Handler() *Handler
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Me(caller auth.Caller) (*auth.Identity, error)
}

type system struct {
	store  Store
	issuer auth.Issuer
	logger *slog.Logger
}

// New creates a users System. A nil issuer disables password login.
func New(store Store, issuer auth.Issuer, logger *slog.Logger) System {
	return &system{
		store:  store,
		issuer: issuer,
		logger: logger.With("system", "users"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// placeholderHash is compared against when the email is unknown so that
// both failure paths cost one bcrypt comparison.
var placeholderHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.DefaultCost)
	return hash
})

func (s *system) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if s.issuer == nil {
		return nil, ErrLoginUnavailable
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidRequest
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			bcrypt.CompareHashAndPassword(placeholderHash(), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, ttl, err := s.issuer.Issue(u.Identity())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "id", u.ID, "role", u.Role)

	return &Session{
		User:      u,
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
	}, nil
}

func (s *system) Me(caller auth.Caller) (*auth.Identity, error) {
	if err := auth.Authorize(auth.ClassAuthenticated, caller); err != nil {
		return nil, err
	}
	id := *caller.Identity
	return &id, nil
}
