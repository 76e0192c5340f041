// Package auth classifies callers from bearer credentials and gates operations
// by caller class. Identities are issued and verified as HS256 JWTs or verified
// against an external OpenID Connect provider.
package auth

import "context"

// Role is the role claim carried by an authenticated identity.
type Role string

const (
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClinician || r == RoleAdmin
}

// Identity is the verified subject of a credential.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role"`
	TrustName string `json:"trustName,omitempty"`
}

// Class orders callers by privilege.
type Class int

const (
	ClassAnonymous Class = iota
	ClassAuthenticated
	ClassAdmin
)

func (c Class) String() string {
	switch c {
	case ClassAuthenticated:
		return "authenticated"
	case ClassAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Caller is the per-request classification of whoever issued a request.
// Identity is nil for anonymous callers. Err records a presented credential
// that failed verification; such callers are treated as anonymous.
type Caller struct {
	Identity *Identity
	Err      error
}

// Anonymous returns a caller with no credential.
func Anonymous() Caller {
	return Caller{}
}

// Authenticated returns a caller with a verified identity.
func Authenticated(id Identity) Caller {
	return Caller{Identity: &id}
}

// Rejected returns an anonymous caller whose credential failed verification.
func Rejected(err error) Caller {
	return Caller{Err: err}
}

// Class returns the caller's privilege class.
func (c Caller) Class() Class {
	switch {
	case c.Identity == nil:
		return ClassAnonymous
	case c.Identity.Role == RoleAdmin:
		return ClassAdmin
	default:
		return ClassAuthenticated
	}
}

// Subject returns the identity ID, or an empty string for anonymous callers.
func (c Caller) Subject() string {
	if c.Identity == nil {
		return ""
	}
	return c.Identity.ID
}

type callerKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or an anonymous caller.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Anonymous()
}
