package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier resolves a bearer token into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Issuer signs identities into bearer tokens.
type Issuer interface {
	Issue(id Identity) (token string, ttl time.Duration, err error)
}

// Claims is the JWT claim set for tokens issued by this service.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role"`
	TrustName string `json:"trust_name,omitempty"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HS256 tokens signed with a shared secret.
type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWT creates an HS256 issuer and verifier.
func NewJWT(secret, issuer string, ttl time.Duration) *JWT {
	return &JWT{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for id that expires after the configured TTL.
func (j *JWT) Issue(id Identity) (string, time.Duration, error) {
	now := j.now()
	claims := Claims{
		Email:     id.Email,
		Name:      id.Name,
		Role:      id.Role,
		TrustName: id.TrustName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return signed, j.ttl, nil
}

// Verify parses and validates an HS256 token issued by this service.
func (j *JWT) Verify(_ context.Context, token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}

	return Identity{
		ID:        claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		TrustName: claims.TrustName,
	}, nil
}
