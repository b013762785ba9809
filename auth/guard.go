package auth

import (
	"context"
	"net/http"
)

// Guard authenticates a request and authorizes the resulting identity.
// Transport layers call Check once per inbound request.
type Guard struct {
	authn Authenticator
	authz Authorizer
}

// NewGuard combines an authenticator and an authorizer. A nil authorizer
// requires RoleAdmin.
func NewGuard(authn Authenticator, authz Authorizer) *Guard {
	if authz == nil {
		authz = NewRoleAuthorizer(RoleAdmin)
	}
	return &Guard{authn: authn, authz: authz}
}

// Check returns the caller's identity, or an error wrapping one of the
// authentication sentinels or ErrForbidden.
func (g *Guard) Check(ctx context.Context, headers http.Header, resource, action string) (*Identity, error) {
	result, err := g.authn.Authenticate(ctx, &AuthRequest{Headers: headers, Resource: resource})
	if err != nil {
		return nil, err
	}
	if !result.Authenticated {
		if result.Error != nil {
			return nil, result.Error
		}
		return nil, ErrInvalidCredentials
	}

	identity := result.Identity
	if identity.IsExpired() {
		return nil, ErrTokenExpired
	}

	if err := g.authz.Authorize(ctx, &AuthzRequest{
		Subject:  identity,
		Resource: resource,
		Action:   action,
	}); err != nil {
		return nil, err
	}
	return identity, nil
}
