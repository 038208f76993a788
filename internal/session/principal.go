// Package session tracks who is making a request.
//
// A Principal is anonymous, a user, or an admin. It is stored in a Store
// under an opaque handle, the handle travels in a signed cookie, and the
// Manager middleware resolves it back into a Principal that handlers read
// from the request context with FromContext. Nothing here is global: every
// request carries its own principal.
package session

import "context"

// Role discriminates the three kinds of principal.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a role a caller may log in as.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the identity attached to a request. The zero value is the
// anonymous principal.
type Principal struct {
	Role     Role   `json:"role"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Anonymous returns the principal of a caller with no session.
func Anonymous() Principal {
	return Principal{}
}

// NewUser returns a principal for an authenticated creator account.
func NewUser(id, username string) Principal {
	return Principal{Role: RoleUser, ID: id, Username: username}
}

// NewAdmin returns a principal for an authenticated admin.
func NewAdmin(id, username string) Principal {
	return Principal{Role: RoleAdmin, ID: id, Username: username}
}

func (p Principal) IsAnonymous() bool { return p.Role == RoleAnonymous }
func (p Principal) IsUser() bool      { return p.Role == RoleUser }
func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }

type contextKey string

const (
	principalKey contextKey = "principal"
	handleKey    contextKey = "sessionHandle"
)

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal stored in ctx, or Anonymous if none is.
func FromContext(ctx context.Context) Principal {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok {
		return Anonymous()
	}
	return p
}

// WithHandle returns a copy of ctx carrying the session handle that
// resolved to the current principal. Logout uses it to find the slot to clear.
func WithHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, handleKey, handle)
}

// HandleFromContext returns the session handle in ctx, if any.
func HandleFromContext(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(handleKey).(string)
	return h, ok && h != ""
}
