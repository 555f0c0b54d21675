// ABOUTME: Unit tests for identity context helpers
// ABOUTME: Tests context propagation, absence handling and bearer token lookup

package auth

import (
	"context"
	"testing"
)

func TestWithIdentity_FromContext(t *testing.T) {
	id := &Identity{Subject: "staff-1", Role: RoleStaff, Token: "tok"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got != id {
		t.Fatalf("FromContext() = %v, want %v", got, id)
	}
	if BearerToken(ctx) != "tok" {
		t.Errorf("BearerToken() = %q, want %q", BearerToken(ctx), "tok")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %v, want nil", got)
	}
	if got := BearerToken(context.Background()); got != "" {
		t.Errorf("BearerToken() = %q, want empty", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustFromContext() should panic without an identity")
		}
	}()
	MustFromContext(context.Background())
}

func TestIdentity_IsAdmin(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleDoctor, false},
		{RoleStaff, false},
	}
	for _, tt := range tests {
		if got := (&Identity{Role: tt.role}).IsAdmin(); got != tt.want {
			t.Errorf("IsAdmin() for %q = %v, want %v", tt.role, got, tt.want)
		}
	}
}
