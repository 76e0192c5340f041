// Package module mounts independently configured HTTP handlers under
// single-segment path prefixes such as /api.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/guidesync/pkg/middleware"
)

// Module serves an inner handler beneath a prefix with its own middleware chain.
// Middleware must be registered before the first request is served.
type Module struct {
	prefix  string
	router  http.Handler
	chain   *middleware.Chain
	handler func() http.Handler
}

// New creates a Module for prefix. It panics on an empty, relative, or
// multi-segment prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	m := &Module{
		prefix: prefix,
		router: router,
		chain:  middleware.NewChain(),
	}
	m.handler = sync.OnceValue(func() http.Handler {
		return m.chain.Then(m.router)
	})
	return m
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module chain.
func (m *Module) Use(mw middleware.Func) {
	m.chain.Use(mw)
}

// Handler returns the router wrapped with the module middleware.
func (m *Module) Handler() http.Handler {
	return m.handler()
}

// ServeHTTP strips the prefix and dispatches to the wrapped router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL = new(url.URL)
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1 || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
