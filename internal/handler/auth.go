package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gloworganic/site/internal/middleware"
	"github.com/gloworganic/site/internal/recordstore"
	"github.com/gloworganic/site/internal/store"
)

// sessionMaxAge matches the local session TTL so the cookie and the database
// row expire together.
const sessionMaxAge = 7 * 24 * 60 * 60

// AuthAPI is the slice of the record-store auth surface the login flow needs.
// Satisfied by *recordstore.Client.
type AuthAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*recordstore.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type AuthHandler struct {
	authAPI  AuthAPI
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(api AuthAPI, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authAPI: api, sessions: sessions, logger: logger}
}

// Login exchanges owner credentials for record-store tokens and opens a local
// session. Failures redirect back to the login page with the upstream message
// intact so the owner sees exactly what the store said.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.loginFailed(w, r, "Email and password are required")
		return
	}

	upstream, err := h.authAPI.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		h.logger.Warn("sign-in rejected", "email", email, "error", err)
		h.loginFailed(w, r, err.Error())
		return
	}

	sess, err := h.sessions.Create(upstream.Email, upstream.AccessToken, upstream.RefreshToken, upstream.ExpiresAt)
	if err != nil {
		h.logger.Error("create session", "error", err)
		h.loginFailed(w, r, "Internal error")
		return
	}

	http.SetCookie(w, middleware.SessionCookie(sess.Token, sessionMaxAge))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout revokes the record-store tokens, drops the local session, and clears
// the cookie. Upstream revocation is best effort.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if sess, err := h.sessions.GetByToken(token); err == nil && sess != nil {
			if err := h.authAPI.SignOut(r.Context(), sess.AccessToken); err != nil {
				h.logger.Warn("upstream sign-out", "error", err)
			}
		}
		if err := h.sessions.Delete(token); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, middleware.SessionCookie("", -1))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
