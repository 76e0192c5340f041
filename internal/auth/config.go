package auth

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Supported identity providers.
const (
	ProviderJWT  = "jwt"
	ProviderOIDC = "oidc"
)

// Config selects and parameterizes the identity provider.
// The jwt provider signs and verifies tokens locally with Secret; the oidc
// provider verifies tokens from an external issuer and cannot issue them.
type Config struct {
	Provider string     `toml:"provider"`
	Secret   string     `toml:"secret"`
	Issuer   string     `toml:"issuer"`
	TokenTTL string     `toml:"token_ttl"`
	OIDC     OIDCConfig `toml:"oidc"`
}

// OIDCConfig holds external OpenID Connect provider parameters.
type OIDCConfig struct {
	IssuerURL string `toml:"issuer_url"`
	ClientID  string `toml:"client_id"`
	JWKSURL   string `toml:"jwks_url"`
	RoleClaim string `toml:"role_claim"`
	AdminRole string `toml:"admin_role"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider      string
	Secret        string
	Issuer        string
	TokenTTL      string
	OIDCIssuerURL string
	OIDCClientID  string
	OIDCJWKSURL   string
	OIDCRoleClaim string
	OIDCAdminRole string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.OIDC.IssuerURL != "" {
		c.OIDC.IssuerURL = overlay.OIDC.IssuerURL
	}
	if overlay.OIDC.ClientID != "" {
		c.OIDC.ClientID = overlay.OIDC.ClientID
	}
	if overlay.OIDC.JWKSURL != "" {
		c.OIDC.JWKSURL = overlay.OIDC.JWKSURL
	}
	if overlay.OIDC.RoleClaim != "" {
		c.OIDC.RoleClaim = overlay.OIDC.RoleClaim
	}
	if overlay.OIDC.AdminRole != "" {
		c.OIDC.AdminRole = overlay.OIDC.AdminRole
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderJWT
	}
	if c.Issuer == "" {
		c.Issuer = "guidesync"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.OIDC.RoleClaim == "" {
		c.OIDC.RoleClaim = "roles"
	}
	if c.OIDC.AdminRole == "" {
		c.OIDC.AdminRole = string(RoleAdmin)
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.Secret, &c.Secret)
	set(env.Issuer, &c.Issuer)
	set(env.TokenTTL, &c.TokenTTL)
	set(env.OIDCIssuerURL, &c.OIDC.IssuerURL)
	set(env.OIDCClientID, &c.OIDC.ClientID)
	set(env.OIDCJWKSURL, &c.OIDC.JWKSURL)
	set(env.OIDCRoleClaim, &c.OIDC.RoleClaim)
	set(env.OIDCAdminRole, &c.OIDC.AdminRole)
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.TokenTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid token_ttl: %q", c.TokenTTL)
	}

	switch c.Provider {
	case ProviderJWT:
		if c.Secret == "" {
			return fmt.Errorf("secret required")
		}
	case ProviderOIDC:
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("oidc issuer_url required")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("oidc client_id required")
		}
		if c.OIDC.JWKSURL == "" {
			return fmt.Errorf("oidc jwks_url required")
		}
	default:
		return fmt.Errorf("unknown auth provider: %q", c.Provider)
	}
	return nil
}

// New creates the configured verifier. The issuer is nil when the provider
// cannot sign tokens locally.
func New(ctx context.Context, cfg *Config) (Verifier, Issuer, error) {
	switch cfg.Provider {
	case ProviderJWT:
		j := NewJWT(cfg.Secret, cfg.Issuer, cfg.TokenTTLDuration())
		return j, j, nil
	case ProviderOIDC:
		return NewOIDC(ctx, &cfg.OIDC), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown auth provider: %q", cfg.Provider)
	}
}
