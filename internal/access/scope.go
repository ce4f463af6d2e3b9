// Package access decides who may run a forum operation.
package access

import (
	"context"
	"slices"

	"forum-api/internal/store"
	"forum-api/pkg/auth"
)

// User is the signed-in caller.
type User struct {
	ID       string
	Email    string
	TenantID string
	Roles    []string
}

// Scope is the per-request authorization context. It is built once when
// the request arrives and never changes afterwards; accessors return copies.
type Scope struct {
	user        *User
	permissions map[string]struct{}
	base        store.Selector
}

// Anonymous is the scope of a request without credentials.
func Anonymous() Scope {
	return Scope{}
}

// NewScope builds a scope for user with the given permissions and base
// selector. A nil user yields an anonymous scope that still carries base.
func NewScope(user *User, permissions []string, base store.Selector) Scope {
	s := Scope{base: base.Clone()}
	if user != nil {
		u := *user
		u.Roles = slices.Clone(user.Roles)
		s.user = &u
		s.permissions = make(map[string]struct{}, len(permissions))
		for _, p := range permissions {
			s.permissions[p] = struct{}{}
		}
	}
	return s
}

// User returns a copy of the signed-in user, or nil.
func (s Scope) User() *User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.Roles = slices.Clone(s.user.Roles)
	return &u
}

// UserID is the signed-in user's id or "".
func (s Scope) UserID() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Authenticated reports whether a user is signed in.
func (s Scope) Authenticated() bool {
	return s.user != nil
}

// Can reports whether permission was granted.
func (s Scope) Can(permission string) bool {
	_, ok := s.permissions[permission]
	return ok
}

// Permissions lists granted permissions in sorted order.
func (s Scope) Permissions() []string {
	out := make([]string, 0, len(s.permissions))
	for p := range s.permissions {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Base is the selector every read of this request is scoped to.
func (s Scope) Base() store.Selector {
	return s.base.Clone()
}

type scopeKey struct{}

// WithScope stores s in ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope stored in ctx, or an anonymous scope.
func FromContext(ctx context.Context) Scope {
	if s, ok := ctx.Value(scopeKey{}).(Scope); ok {
		return s
	}
	return Anonymous()
}

// RolePermissions maps a role name to the permissions it grants.
type RolePermissions map[string][]string

// Resolver turns an authenticated identity into a Scope.
type Resolver struct {
	roles func() RolePermissions
}

// NewResolver returns a resolver that looks role grants up through roles on
// every call, so a reloaded mapping applies to the next request.
func NewResolver(roles func() RolePermissions) *Resolver {
	if roles == nil {
		roles = func() RolePermissions { return nil }
	}
	return &Resolver{roles: roles}
}

// Resolve builds the scope for u. Granted permissions are the token's own
// permissions plus those of every role it carries. A tenant on the token
// becomes the base selector.
func (r *Resolver) Resolve(u *auth.UserContext) Scope {
	if u == nil {
		return Anonymous()
	}

	granted := slices.Clone(u.Permissions)
	mapping := r.roles()
	for _, role := range u.Roles {
		granted = append(granted, mapping[role]...)
	}

	var base store.Selector
	if u.TenantID != "" {
		base = store.Selector{"tenantId": u.TenantID}
	}

	return NewScope(&User{
		ID:       u.UserID,
		Email:    u.Email,
		TenantID: u.TenantID,
		Roles:    u.Roles,
	}, granted, base)
}
