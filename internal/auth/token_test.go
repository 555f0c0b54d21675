// ABOUTME: Unit tests for identity token verification and generation
// ABOUTME: Tests valid tokens, invalid tokens, expired tokens and required claims

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-jwt-signing")

func TestJWTVerifier_ValidToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	token, err := verifier.Generate(Claims{
		Subject:    "staff-123",
		Role:       RoleStaff,
		GivenName:  "Linh",
		FamilyName: "Tran",
		Email:      "linh@example.org",
	}, time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	id, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if id.Subject != "staff-123" {
		t.Errorf("Subject = %q, want %q", id.Subject, "staff-123")
	}
	if id.Role != RoleStaff {
		t.Errorf("Role = %q, want %q", id.Role, RoleStaff)
	}
	if id.Name != "Linh Tran" {
		t.Errorf("Name = %q, want %q", id.Name, "Linh Tran")
	}
	if id.Email != "linh@example.org" {
		t.Errorf("Email = %q", id.Email)
	}
	if id.Token != token {
		t.Error("Token should carry the raw JWT")
	}
	if time.Until(id.ExpiresAt) < 50*time.Minute {
		t.Errorf("ExpiresAt = %v, want about an hour from now", id.ExpiresAt)
	}
}

func TestJWTVerifier_InvalidToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{
			name: "wrong secret",
			token: func() string {
				other := NewJWTVerifier([]byte("different-secret"))
				token, _ := other.Generate(Claims{Subject: "staff-1", Role: RoleStaff}, time.Hour)
				return token
			}(),
		},
		{
			name: "unknown role",
			token: func() string {
				token, _ := verifier.Generate(Claims{Subject: "staff-1", Role: "janitor"}, time.Hour)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	token, err := verifier.Generate(Claims{Subject: "staff-1", Role: RoleStaff}, -time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTVerifier_MissingClaims(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "no sub", claims: jwt.MapClaims{"role": "staff"}},
		{name: "no role", claims: jwt.MapClaims{"sub": "staff-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.claims["exp"] = time.Now().Add(time.Hour).Unix()
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString(testSecret)
			if err != nil {
				t.Fatalf("SignedString() error = %v", err)
			}

			_, err = verifier.Verify(token)
			if !errors.Is(err, ErrMissingClaim) {
				t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"Doctor", RoleDoctor, true},
		{" staff ", RoleStaff, true},
		{"owner", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIdentity_DisplayName(t *testing.T) {
	if got := (&Identity{Subject: "s", Name: "Linh Tran", Email: "e"}).DisplayName(); got != "Linh Tran" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (&Identity{Subject: "s", Email: "e@x"}).DisplayName(); got != "e@x" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (&Identity{Subject: "s"}).DisplayName(); got != "s" {
		t.Errorf("DisplayName() = %q", got)
	}
}
