package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/guidesync/pkg/formatting"
	"github.com/JaimeStill/guidesync/pkg/middleware"
	"github.com/JaimeStill/guidesync/pkg/pagination"
)

const (
	EnvAPIBasePath      = "GUIDESYNC_API_BASE_PATH"
	EnvAPIMaxUploadSize = "GUIDESYNC_API_MAX_UPLOAD_SIZE"
	EnvAPICatalogStore  = "GUIDESYNC_API_CATALOG_STORE"
)

// Catalog store backends.
const (
	CatalogStorePostgres = "postgres"
	CatalogStoreMemory   = "memory"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "GUIDESYNC_CORS_ENABLED",
	Origins:          "GUIDESYNC_CORS_ORIGINS",
	AllowedMethods:   "GUIDESYNC_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "GUIDESYNC_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "GUIDESYNC_CORS_EXPOSED_HEADERS",
	AllowCredentials: "GUIDESYNC_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "GUIDESYNC_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "GUIDESYNC_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "GUIDESYNC_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, and pagination settings.
// CatalogStore selects where guideline records live; the memory backend does
// not survive restarts.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CatalogStore  string                `toml:"catalog_store"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize as a byte count.
// Finalize guarantees the value parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.CatalogStore != "" {
		c.CatalogStore = overlay.CatalogStore
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.CatalogStore == "" {
		c.CatalogStore = CatalogStorePostgres
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPICatalogStore); v != "" {
		c.CatalogStore = v
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	switch c.CatalogStore {
	case CatalogStorePostgres, CatalogStoreMemory:
	default:
		return fmt.Errorf("unknown catalog_store: %q", c.CatalogStore)
	}
	return nil
}
