package auth

import (
	"context"
	"fmt"
)

// Authorizer determines if an identity is allowed to perform an action.
type Authorizer interface {
	// Authorize checks if the request is permitted.
	// Returns nil if authorized, or an error (typically *AuthzError) if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the identity making the request.
	Subject *Identity

	// Resource is the target route (e.g., "/api/ai/generate").
	Resource string

	// Action is the requested action, usually the HTTP method.
	Action string
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the identity that was denied.
	Subject string

	// Resource is the resource that was denied access to.
	Resource string

	// Action is the action that was denied.
	Action string

	// Reason explains why access was denied.
	Reason string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q resource=%q action=%q reason=%q",
		e.Subject, e.Resource, e.Action, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// RoleAuthorizer permits identities holding one role.
type RoleAuthorizer struct {
	role string
}

// NewRoleAuthorizer creates an authorizer requiring role. Empty means RoleAdmin.
func NewRoleAuthorizer(role string) *RoleAuthorizer {
	if role == "" {
		role = RoleAdmin
	}
	return &RoleAuthorizer{role: role}
}

// Name returns "role".
func (a *RoleAuthorizer) Name() string {
	return "role"
}

// Role returns the required role.
func (a *RoleAuthorizer) Role() string {
	return a.role
}

// Authorize permits the request when the subject holds the role.
func (a *RoleAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return &AuthzError{
			Resource: req.Resource,
			Action:   req.Action,
			Reason:   "no identity provided",
		}
	}
	if !req.Subject.HasRole(a.role) {
		return &AuthzError{
			Subject:  req.Subject.Principal,
			Resource: req.Resource,
			Action:   req.Action,
			Reason:   "requires role " + a.role,
		}
	}
	return nil
}

// AuthorizerFunc is an adapter to allow use of ordinary functions as Authorizers.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls the function.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// Name returns "func" for function-based authorizers.
func (f AuthorizerFunc) Name() string {
	return "func"
}

// Ensure RoleAuthorizer implements Authorizer
var _ Authorizer = (*RoleAuthorizer)(nil)
