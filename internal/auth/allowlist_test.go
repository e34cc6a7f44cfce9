package auth

import (
	"context"
	"reflect"
	"testing"
)

func TestParseAllowList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AllowList
	}{
		{"empty", "", nil},
		{"single", "owner@example.com", AllowList{"owner@example.com"}},
		{"trims and lowercases", "  Owner@Example.COM , helper@example.com ", AllowList{"owner@example.com", "helper@example.com"}},
		{"drops empties", ",,owner@example.com,,", AllowList{"owner@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAllowList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAllowList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAllowListAllows(t *testing.T) {
	list := ParseAllowList("owner@example.com, helper@example.com")

	if !list.Allows("owner@example.com") {
		t.Error("listed identity rejected")
	}
	if !list.Allows("  OWNER@Example.com ") {
		t.Error("matching is case-insensitive and trimmed")
	}
	if list.Allows("other@example.com") {
		t.Error("unlisted identity admitted")
	}
	if list.Allows("") {
		t.Error("empty identity admitted")
	}
}

// An empty allow-list deliberately admits every authenticated identity.
func TestEmptyAllowListAdmitsAuthenticated(t *testing.T) {
	var list AllowList
	if !list.Allows("anyone@example.com") {
		t.Error("empty allow-list must admit authenticated identities")
	}
	if list.Allows("") {
		t.Error("unauthenticated identity must still be rejected")
	}
}

func TestAuthContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if Email(ctx) != "" || AccessToken(ctx) != "" {
		t.Error("expected empty values without auth context")
	}

	ctx = WithAuth(ctx, AuthContext{Email: "owner@example.com", AccessToken: "tok", SessionID: 7})
	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.Email != "owner@example.com" || ac.AccessToken != "tok" || ac.SessionID != 7 {
		t.Errorf("auth context = %+v", ac)
	}
	if Email(ctx) != "owner@example.com" {
		t.Errorf("Email = %q", Email(ctx))
	}
	if AccessToken(ctx) != "tok" {
		t.Errorf("AccessToken = %q", AccessToken(ctx))
	}
}
