// Package pagination windows catalog listings into pages and reports the
// navigation metadata returned alongside each page.
package pagination

import (
	"errors"
	"os"
	"strconv"
)

const (
	// DefaultPageSize is the limit used when neither config nor request sets one.
	DefaultPageSize = 20
	// DefaultMaxPageSize caps any requested limit unless configured otherwise.
	DefaultMaxPageSize = 100
)

// Config sets the page size applied to requests without a limit and the
// ceiling every requested limit is clamped to.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables that override Config,
// e.g. GUIDESYNC_PAGINATION_DEFAULT_PAGE_SIZE.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge takes every positive size from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize > 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize > 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	envSize(env.DefaultPageSize, &c.DefaultPageSize)
	envSize(env.MaxPageSize, &c.MaxPageSize)
}

// envSize replaces *dst with the positive integer held by the named variable.
// Unset, malformed, and non-positive values leave *dst alone.
func envSize(name string, dst *int) {
	if name == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil && n > 0 {
		*dst = n
	}
}

var (
	errDefaultPageSize = errors.New("default_page_size must be positive")
	errMaxPageSize     = errors.New("max_page_size must be positive")
	errPageSizeRange   = errors.New("default_page_size cannot exceed max_page_size")
)

func (c *Config) validate() error {
	switch {
	case c.DefaultPageSize < 1:
		return errDefaultPageSize
	case c.MaxPageSize < 1:
		return errMaxPageSize
	case c.DefaultPageSize > c.MaxPageSize:
		return errPageSizeRange
	}
	return nil
}
