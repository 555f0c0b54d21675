// ABOUTME: Verification of identity-provider tokens presented at sign-in
// ABOUTME: HS256 JWTs carrying subject, role and optional name and email claims

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Role is the console role granted by the identity provider.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleDoctor, RoleStaff:
		return r, true
	default:
		return "", false
	}
}

// Identity is the signed-in user. Token is the raw JWT, forwarded to the
// backend as a bearer token on every call made on the user's behalf.
type Identity struct {
	Subject   string
	Role      Role
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// DisplayName falls back to email, then subject.
func (i *Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return i.Subject
	}
}

// IsAdmin reports whether the identity uses the admin shell.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// TokenVerifier turns a presented token into an Identity.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

// Claims are the fields minted by Generate.
type Claims struct {
	Subject    string
	Role       Role
	GivenName  string
	FamilyName string
	Email      string
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token and extracts the identity. sub and role are
// required; role must be one this console knows.
func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	rawRole, _ := claims["role"].(string)
	if rawRole == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	role, ok := ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, rawRole)
	}

	given, _ := claims["given_name"].(string)
	family, _ := claims["family_name"].(string)
	email, _ := claims["email"].(string)

	id := &Identity{
		Subject: sub,
		Role:    role,
		Name:    strings.TrimSpace(given + " " + family),
		Email:   email,
		Token:   tokenString,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

// Generate mints a token for local development and tests.
func (v *JWTVerifier) Generate(c Claims, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  c.Subject,
		"role": string(c.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(expiresIn).Unix(),
	}
	if c.GivenName != "" {
		claims["given_name"] = c.GivenName
	}
	if c.FamilyName != "" {
		claims["family_name"] = c.FamilyName
	}
	if c.Email != "" {
		claims["email"] = c.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
