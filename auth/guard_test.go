package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthzError(t *testing.T) {
	err := &AuthzError{Subject: "user123", Resource: "/api/ai/generate", Action: "POST", Reason: "requires role admin"}

	expected := `authorization denied: subject="user123" resource="/api/ai/generate" action="POST" reason="requires role admin"`
	if got := err.Error(); got != expected {
		t.Errorf("Error() = %v, want %v", got, expected)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("errors.Is(AuthzError, ErrForbidden) = false, want true")
	}
}

func TestRoleAuthorizer(t *testing.T) {
	authz := NewRoleAuthorizer("")
	if authz.Role() != RoleAdmin {
		t.Fatalf("Role() = %q, want admin", authz.Role())
	}

	tests := []struct {
		name    string
		subject *Identity
		allowed bool
	}{
		{"admin", &Identity{Principal: "u1", Roles: []string{"admin"}}, true},
		{"admin among others", &Identity{Principal: "u1", Roles: []string{"student", "admin"}}, true},
		{"student", &Identity{Principal: "u2", Roles: []string{"student"}}, false},
		{"no roles", &Identity{Principal: "u3"}, false},
		{"no identity", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(context.Background(), &AuthzRequest{Subject: tt.subject, Resource: "/api/ai/refine", Action: "POST"})
			if tt.allowed && err != nil {
				t.Errorf("Authorize() error = %v, want nil", err)
			}
			if !tt.allowed && !errors.Is(err, ErrForbidden) {
				t.Errorf("Authorize() error = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestGuard_Check(t *testing.T) {
	authn, err := NewJWTAuthenticator(JWTConfig{}, NewStaticKeyProvider(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	guard := NewGuard(authn, nil)

	admin := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "admin-1", "roles": []any{"admin"}})
	student := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "student-1", "roles": []any{"student"}})

	id, err := guard.Check(context.Background(), bearer(admin), "/api/ai/generate", http.MethodPost)
	if err != nil {
		t.Fatalf("Check(admin) error = %v", err)
	}
	if id.Principal != "admin-1" {
		t.Errorf("Principal = %q, want admin-1", id.Principal)
	}

	if _, err := guard.Check(context.Background(), bearer(student), "/api/ai/generate", http.MethodPost); !errors.Is(err, ErrForbidden) {
		t.Errorf("Check(student) error = %v, want ErrForbidden", err)
	}
	if _, err := guard.Check(context.Background(), http.Header{}, "/api/ai/generate", http.MethodPost); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Check(anonymous) error = %v, want ErrMissingCredentials", err)
	}
}

func TestGuard_CustomAuthorizer(t *testing.T) {
	authn, _ := NewJWTAuthenticator(JWTConfig{}, NewStaticKeyProvider(testSecret))
	var seen *AuthzRequest
	guard := NewGuard(authn, AuthorizerFunc(func(_ context.Context, req *AuthzRequest) error {
		seen = req
		return nil
	}))

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u1"})
	if _, err := guard.Check(context.Background(), bearer(token), "/api/ai/outline", http.MethodPost); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if seen == nil || seen.Resource != "/api/ai/outline" || seen.Action != http.MethodPost {
		t.Errorf("authorizer saw %+v", seen)
	}
}

func TestIdentity(t *testing.T) {
	id := &Identity{Principal: "u1", Roles: []string{"admin"}}
	if !id.HasRole("admin") || id.HasRole("student") {
		t.Errorf("HasRole mismatch for %v", id.Roles)
	}
	if id.IsExpired() {
		t.Error("identity without expiry must not be expired")
	}
	id.ExpiresAt = time.Now().Add(-time.Minute)
	if !id.IsExpired() {
		t.Error("identity past expiry must be expired")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Error("empty context must carry no identity")
	}

	id := &Identity{Principal: "u1"}
	ctx = WithIdentity(ctx, id)
	if IdentityFromContext(ctx) != id {
		t.Error("IdentityFromContext did not return the stored identity")
	}
	if PrincipalFromContext(ctx) != "u1" {
		t.Errorf("PrincipalFromContext = %q, want u1", PrincipalFromContext(ctx))
	}
}
