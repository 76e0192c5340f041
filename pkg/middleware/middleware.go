// Package middleware provides the HTTP middleware shared by GuideSync modules:
// panic recovery, request logging, and CORS.
package middleware

import "net/http"

// Func wraps an http.Handler with additional behavior.
type Func func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first middleware added is the
// outermost wrapper at request time.
type Chain struct {
	stack []Func
}

// NewChain creates a Chain from the given middleware, outermost first.
func NewChain(mw ...Func) *Chain {
	return &Chain{stack: append([]Func(nil), mw...)}
}

// Use appends middleware to the inner end of the chain.
func (c *Chain) Use(mw Func) {
	c.stack = append(c.stack, mw)
}

// Len reports how many middleware are registered.
func (c *Chain) Len() int {
	return len(c.stack)
}

// Then wraps h with every middleware in the chain.
func (c *Chain) Then(h http.Handler) http.Handler {
	for i := len(c.stack) - 1; i >= 0; i-- {
		h = c.stack[i](h)
	}
	return h
}
