package recordstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// fakeAccessToken builds an unsigned JWT-shaped token with the given exp claim.
func fakeAccessToken(exp int64) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"u1","exp":%d}`, exp)))
	return header + "." + payload + ".sig"
}

func TestSignInWithPassword(t *testing.T) {
	var gotGrant, gotAPIKey string
	var gotBody map[string]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %q, want /auth/v1/token", r.URL.Path)
		}
		gotGrant = r.URL.Query().Get("grant_type")
		gotAPIKey = r.Header.Get("apikey")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"user":          map[string]string{"email": "owner@example.com"},
		})
	})

	sess, err := client.SignInWithPassword(context.Background(), "owner@example.com", "secret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if gotGrant != "password" {
		t.Errorf("grant_type = %q, want password", gotGrant)
	}
	if gotAPIKey != "anon-key" {
		t.Errorf("apikey = %q", gotAPIKey)
	}
	if gotBody["email"] != "owner@example.com" || gotBody["password"] != "secret" {
		t.Errorf("body = %v", gotBody)
	}
	if sess.AccessToken != "access-1" || sess.RefreshToken != "refresh-1" {
		t.Errorf("session = %+v", sess)
	}
	if sess.Email != "owner@example.com" {
		t.Errorf("email = %q", sess.Email)
	}
	if until := time.Until(sess.ExpiresAt); until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry %v not derived from expires_in", sess.ExpiresAt)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "owner@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid login credentials" {
		t.Errorf("error = %q, want the auth API's message verbatim", err)
	}
}

func TestRefreshSession(t *testing.T) {
	var gotGrant string
	var gotBody map[string]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotGrant = r.URL.Query().Get("grant_type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"expires_at":    time.Now().Add(time.Hour).Unix(),
			"user":          map[string]string{"email": "owner@example.com"},
		})
	})

	sess, err := client.RefreshSession(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if gotGrant != "refresh_token" {
		t.Errorf("grant_type = %q, want refresh_token", gotGrant)
	}
	if gotBody["refresh_token"] != "refresh-1" {
		t.Errorf("body = %v", gotBody)
	}
	if sess.AccessToken != "access-2" {
		t.Errorf("access token = %q", sess.AccessToken)
	}
}

func TestTokenExpiryFallback(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Unix()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Response omits expires_in/expires_at; the client decodes the token.
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fakeAccessToken(exp),
			"refresh_token": "refresh-1",
			"user":          map[string]string{"email": "owner@example.com"},
		})
	})

	sess, err := client.SignInWithPassword(context.Background(), "owner@example.com", "secret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if got := sess.ExpiresAt.Unix(); got != exp {
		t.Errorf("expiry = %d, want %d (from the token's exp claim)", got, exp)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	if got, ok := TokenExpiry(fakeAccessToken(exp)); !ok || got.Unix() != exp {
		t.Errorf("TokenExpiry = %v, %v", got, ok)
	}
	if _, ok := TokenExpiry("not-a-token"); ok {
		t.Error("expected failure for a malformed token")
	}
	if _, ok := TokenExpiry("a.b.c"); ok {
		t.Error("expected failure for an undecodable payload")
	}
}

func TestSignOut(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/logout" {
			t.Errorf("path = %q, want /auth/v1/logout", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.SignOut(context.Background(), "access-1"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if gotAuth != "Bearer access-1" {
		t.Errorf("authorization = %q", gotAuth)
	}
}
