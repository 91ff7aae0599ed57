package credentials

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIdentityFromToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":  "u42",
		"role": "employee",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	id, err := IdentityFromToken(token)
	if err != nil {
		t.Fatalf("IdentityFromToken() error = %v", err)
	}
	if id.UserID != "u42" {
		t.Errorf("UserID = %q, want u42", id.UserID)
	}
	if id.Role != RoleEmployee {
		t.Errorf("Role = %q, want employee", id.Role)
	}
	if id.Profile["sub"] != "u42" {
		t.Errorf("Profile must carry raw claims, got %v", id.Profile)
	}
}

func TestIdentityFromToken_MissingClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"iss": "backend"})

	id, err := IdentityFromToken(token)
	if err != nil {
		t.Fatalf("IdentityFromToken() error = %v", err)
	}
	if id.UserID != "" || id.Role != "" {
		t.Errorf("missing claims must leave fields zero, got %+v", id)
	}
}

func TestIdentityFromToken_UnknownRole(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u1", "role": "superuser"})

	id, err := IdentityFromToken(token)
	if err != nil {
		t.Fatalf("IdentityFromToken() error = %v", err)
	}
	if id.Role != "" {
		t.Errorf("Role = %q, want zero for unknown claim value", id.Role)
	}
}

func TestIdentityFromToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := IdentityFromToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("IdentityFromToken(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}
