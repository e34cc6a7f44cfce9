package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gloworganic/site/internal/auth"
	"github.com/gloworganic/site/internal/menu"
)

type PageHandler struct {
	repo      *menu.Repository
	templates *template.Template
	logger    *slog.Logger
}

func NewPageHandler(repo *menu.Repository, logger *slog.Logger) *PageHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &PageHandler{repo: repo, templates: tmpl, logger: logger}
}

// Home renders the landing page with the current service menu. Fallback
// content still renders a complete page when the record store is unreachable.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap := h.repo.Snapshot()
	data := map[string]any{
		"Title":      "Glow Organic Spa",
		"Categories": snap.Categories,
		"MenuError":  snap.Err,
	}
	h.render(w, "home.html", data)
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Owner Login — Glow Organic Spa",
		"Error": r.URL.Query().Get("error"),
	}
	h.render(w, "login.html", data)
}

// AdminPage renders the owner portal shell; the editor itself talks to the
// JSON API and the live-update socket.
func (h *PageHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Menu Editor — Glow Organic Spa",
		"Email": auth.Email(r.Context()),
	}
	h.render(w, "admin.html", data)
}

func (h *PageHandler) RestrictedPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Not Authorized — Glow Organic Spa",
		"Email": auth.Email(r.Context()),
	}
	h.render(w, "restricted.html", data)
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
