// Package config loads the GuideSync service configuration from TOML files,
// an optional .env file, and GUIDESYNC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/pkg/database"
	"github.com/JaimeStill/guidesync/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvGuidesyncEnv             = "GUIDESYNC_ENV"
	EnvGuidesyncShutdownTimeout = "GUIDESYNC_SHUTDOWN_TIMEOUT"
	EnvGuidesyncVersion         = "GUIDESYNC_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "GUIDESYNC_DB_URL",
	Host:            "GUIDESYNC_DB_HOST",
	Port:            "GUIDESYNC_DB_PORT",
	Name:            "GUIDESYNC_DB_NAME",
	User:            "GUIDESYNC_DB_USER",
	Password:        "GUIDESYNC_DB_PASSWORD",
	SSLMode:         "GUIDESYNC_DB_SSL_MODE",
	MaxOpenConns:    "GUIDESYNC_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "GUIDESYNC_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "GUIDESYNC_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "GUIDESYNC_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "GUIDESYNC_STORAGE_PROVIDER",
	ContainerName:    "GUIDESYNC_STORAGE_CONTAINER_NAME",
	ConnectionString: "GUIDESYNC_STORAGE_CONNECTION_STRING",
	ServiceURL:       "GUIDESYNC_STORAGE_SERVICE_URL",
	Bucket:           "GUIDESYNC_STORAGE_BUCKET",
	Region:           "GUIDESYNC_STORAGE_REGION",
	Endpoint:         "GUIDESYNC_STORAGE_ENDPOINT",
	PublicBaseURL:    "GUIDESYNC_STORAGE_PUBLIC_BASE_URL",
}

var authEnv = &auth.Env{
	Provider:      "GUIDESYNC_AUTH_PROVIDER",
	Secret:        "GUIDESYNC_AUTH_SECRET",
	Issuer:        "GUIDESYNC_AUTH_ISSUER",
	TokenTTL:      "GUIDESYNC_AUTH_TOKEN_TTL",
	OIDCIssuerURL: "GUIDESYNC_AUTH_OIDC_ISSUER_URL",
	OIDCClientID:  "GUIDESYNC_AUTH_OIDC_CLIENT_ID",
	OIDCJWKSURL:   "GUIDESYNC_AUTH_OIDC_JWKS_URL",
	OIDCRoleClaim: "GUIDESYNC_AUTH_OIDC_ROLE_CLAIM",
	OIDCAdminRole: "GUIDESYNC_AUTH_OIDC_ADMIN_ROLE",
}

// Config is the root configuration for the GuideSync service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Auth            auth.Config     `toml:"auth"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the GUIDESYNC_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGuidesyncEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads a .env file and the base config (if present), applies any
// environment overlay, and finalizes all values. Variables already set in the
// process environment take precedence over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to every sub-config.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGuidesyncShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGuidesyncVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvGuidesyncEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
