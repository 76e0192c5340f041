// Package routes declares HTTP endpoints as data so each domain handler can
// publish its routes and the API module can register them in one place.
package routes

import "net/http"

// Route binds an HTTP method and path pattern to a handler.
// Pattern uses net/http ServeMux wildcard syntax, e.g. "/{id}/file".
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// String renders the route as a ServeMux pattern under prefix.
func (r Route) String(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
