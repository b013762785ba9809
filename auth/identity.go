package auth

import (
	"slices"
	"time"
)

// RoleAdmin is the role required to use the gateway.
const RoleAdmin = "admin"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone AuthMethod = "none"
	AuthMethodJWT  AuthMethod = "jwt"
)

// Identity represents an authenticated principal.
type Identity struct {
	// Principal is the unique user identifier.
	Principal string

	// Roles are the roles assigned to this identity.
	Roles []string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// ExpiresAt is when this identity expires.
	ExpiresAt time.Time

	// IssuedAt is when this identity was created.
	IssuedAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}
