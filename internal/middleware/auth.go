package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gloworganic/site/internal/auth"
	"github.com/gloworganic/site/internal/recordstore"
	"github.com/gloworganic/site/internal/store"
)

const sessionCookieName = "glow_session"

// refreshLeeway refreshes the upstream access token slightly before it
// expires so in-flight requests never carry a dead token.
const refreshLeeway = time.Minute

// SessionRefresher exchanges a refresh token for fresh record-store
// credentials. Satisfied by *recordstore.Client.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*recordstore.Session, error)
}

// SessionCookie builds the portal session cookie for a token. An empty token
// with negative age clears it.
func SessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionToken extracts the portal session token from a request, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth validates the session cookie, refreshes the record-store access
// token when it is about to expire, and populates the auth context.
func RequireAuth(sessions *store.SessionStore, refresher SessionRefresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				denyUnauthenticated(w, r)
				return
			}

			sess, err := sessions.GetByToken(token)
			if err != nil || sess == nil {
				denyUnauthenticated(w, r)
				return
			}

			if time.Until(sess.TokenExpiry) < refreshLeeway {
				refreshed, err := refresher.RefreshSession(r.Context(), sess.RefreshToken)
				if err != nil {
					// Upstream no longer honors this session; drop ours too.
					sessions.Delete(token)
					denyUnauthenticated(w, r)
					return
				}
				if err := sessions.UpdateTokens(sess.ID, refreshed.AccessToken, refreshed.RefreshToken, refreshed.ExpiresAt); err != nil {
					denyUnauthenticated(w, r)
					return
				}
				sess.AccessToken = refreshed.AccessToken
			}

			ac := auth.AuthContext{
				Email:       sess.Email,
				AccessToken: sess.AccessToken,
				SessionID:   sess.ID,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireAdmin checks the authenticated identity against the allow-list.
// This gate is a convenience for the portal UI; the record store's row-level
// security is what actually protects writes.
func RequireAdmin(allow auth.AllowList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow.Allows(auth.Email(r.Context())) {
				if isAPIRequest(r) {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, "/admin/restricted", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
