package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/coreos/go-oidc/v3/oidc"
)

type oidcVerifier struct {
	verifier  *oidc.IDTokenVerifier
	roleClaim string
	adminRole string
}

// NewOIDC creates a verifier for ID tokens issued by an external OpenID Connect
// provider. Signing keys are fetched from the JWKS endpoint on demand and cached
// for the lifetime of ctx. Identities holding AdminRole within RoleClaim are
// classified as admins; every other verified identity is a clinician.
func NewOIDC(ctx context.Context, cfg *OIDCConfig) Verifier {
	keys := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	return &oidcVerifier{
		verifier:  oidc.NewVerifier(cfg.IssuerURL, keys, &oidc.Config{ClientID: cfg.ClientID}),
		roleClaim: cfg.RoleClaim,
		adminRole: cfg.AdminRole,
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	role := RoleClinician
	if slices.Contains(claimValues(claims[v.roleClaim]), v.adminRole) {
		role = RoleAdmin
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	trust, _ := claims["trust_name"].(string)

	return Identity{
		ID:        idToken.Subject,
		Email:     email,
		Name:      name,
		Role:      role,
		TrustName: trust,
	}, nil
}

// claimValues normalizes a string or string-array claim into a slice.
func claimValues(claim any) []string {
	switch v := claim.(type) {
	case string:
		return []string{v}
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	}
	return nil
}
