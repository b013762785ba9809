package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-at-least-32-bytes")

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func newTestAuthenticator(t *testing.T, config JWTConfig) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator(config, NewStaticKeyProvider(testSecret))
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}
	return a
}

func TestNewJWTAuthenticator_NilKeyProvider(t *testing.T) {
	if _, err := NewJWTAuthenticator(JWTConfig{}, nil); !errors.Is(err, ErrMissingSigningKey) {
		t.Errorf("error = %v, want ErrMissingSigningKey", err)
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	auth := newTestAuthenticator(t, JWTConfig{Issuer: "course-builder", Audience: "contentgate"})
	now := time.Now()

	valid := jwt.MapClaims{
		"sub":   "user-1",
		"iss":   "course-builder",
		"aud":   "contentgate",
		"roles": []any{"admin", "editor"},
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	}

	t.Run("valid token", func(t *testing.T) {
		result, err := auth.Authenticate(context.Background(), &AuthRequest{Headers: bearer(signToken(t, jwt.SigningMethodHS256, testSecret, valid))})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if !result.Authenticated {
			t.Fatalf("Authenticated = false, error = %v", result.Error)
		}
		id := result.Identity
		if id.Principal != "user-1" {
			t.Errorf("Principal = %q, want user-1", id.Principal)
		}
		if !id.HasRole("admin") || !id.HasRole("editor") {
			t.Errorf("Roles = %v, want admin and editor", id.Roles)
		}
		if id.Method != AuthMethodJWT {
			t.Errorf("Method = %q, want jwt", id.Method)
		}
		if id.ExpiresAt.Unix() != now.Add(time.Hour).Unix() {
			t.Errorf("ExpiresAt = %v", id.ExpiresAt)
		}
	})

	t.Run("single role string", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "user-2", "iss": "course-builder", "aud": "contentgate", "roles": "admin"}
		result, _ := auth.Authenticate(context.Background(), &AuthRequest{Headers: bearer(signToken(t, jwt.SigningMethodHS256, testSecret, claims))})
		if !result.Authenticated || !result.Identity.HasRole("admin") {
			t.Errorf("expected admin identity, got %+v", result)
		}
	})

	failures := []struct {
		name    string
		headers http.Header
		want    error
	}{
		{"no header", http.Header{}, ErrMissingCredentials},
		{"wrong scheme", http.Header{"Authorization": {"Basic abc"}}, ErrMissingCredentials},
		{"empty bearer", http.Header{"Authorization": {"Bearer   "}}, ErrMissingCredentials},
		{"garbage", bearer("not-a-jwt"), ErrTokenMalformed},
		{"expired", bearer(signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "user-1", "iss": "course-builder", "aud": "contentgate",
			"exp": now.Add(-time.Hour).Unix(),
		})), ErrTokenExpired},
		{"wrong secret", bearer(signToken(t, jwt.SigningMethodHS256, []byte("another-secret-key-of-32-bytes!!"), valid)), ErrInvalidCredentials},
		{"wrong issuer", bearer(signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "user-1", "iss": "someone-else", "aud": "contentgate",
		})), ErrInvalidCredentials},
		{"wrong audience", bearer(signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "user-1", "iss": "course-builder", "aud": "other",
		})), ErrInvalidCredentials},
		{"missing subject", bearer(signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"iss": "course-builder", "aud": "contentgate",
		})), ErrInvalidCredentials},
		{"unsigned token", bearer(signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)), ErrInvalidCredentials},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			result, err := auth.Authenticate(context.Background(), &AuthRequest{Headers: tt.headers})
			if err != nil {
				t.Fatalf("Authenticate() internal error = %v", err)
			}
			if result.Authenticated {
				t.Fatal("Authenticated = true, want false")
			}
			if !errors.Is(result.Error, tt.want) {
				t.Errorf("Error = %v, want %v", result.Error, tt.want)
			}
		})
	}
}

func TestJWTAuthenticator_EmptySecretIsInternalError(t *testing.T) {
	auth, err := NewJWTAuthenticator(JWTConfig{}, NewStaticKeyProvider(nil))
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "user-1"})
	if _, err := auth.Authenticate(context.Background(), &AuthRequest{Headers: bearer(token)}); !errors.Is(err, ErrMissingSigningKey) {
		t.Errorf("error = %v, want ErrMissingSigningKey", err)
	}
}

func TestJWTAuthenticator_CustomClaims(t *testing.T) {
	auth := newTestAuthenticator(t, JWTConfig{
		HeaderName:     "X-Session",
		TokenPrefix:    "Token ",
		PrincipalClaim: "email",
		RolesClaim:     "role",
	})

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"email": "ada@example.com", "role": "admin"})
	headers := http.Header{}
	headers.Set("X-Session", "Token "+token)

	result, err := auth.Authenticate(context.Background(), &AuthRequest{Headers: headers})
	if err != nil || !result.Authenticated {
		t.Fatalf("Authenticate() = %+v, %v", result, err)
	}
	if result.Identity.Principal != "ada@example.com" {
		t.Errorf("Principal = %q", result.Identity.Principal)
	}
	if !result.Identity.HasRole(RoleAdmin) {
		t.Errorf("Roles = %v", result.Identity.Roles)
	}
}
