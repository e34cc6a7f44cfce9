package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gloworganic/site/internal/auth"
	"github.com/gloworganic/site/internal/config"
	"github.com/gloworganic/site/internal/handler"
	"github.com/gloworganic/site/internal/menu"
	"github.com/gloworganic/site/internal/middleware"
	"github.com/gloworganic/site/internal/recordstore"
	"github.com/gloworganic/site/internal/store"
	ws "github.com/gloworganic/site/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	storeClient  *recordstore.Client
	repo         *menu.Repository
	edit         *menu.EditSession
	sessions     *store.SessionStore
	allow        auth.AllowList
	menuH        *handler.MenuHandler
	authH        *handler.AuthHandler
	pageH        *handler.PageHandler
	loginLimiter *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	storeClient := recordstore.New(recordstore.Config{
		URL:     cfg.StoreURL,
		AnonKey: cfg.StoreAnonKey,
	})

	repo := menu.NewRepository(storeClient, logger.With("component", "menu"))
	edit := menu.NewEditSession(storeClient, repo, logger.With("component", "editor"))

	sessions, err := store.NewSessionStore(db, cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	allow := auth.ParseAllowList(cfg.AdminEmails)

	return &Server{
		db:           db,
		hub:          hub,
		storeClient:  storeClient,
		repo:         repo,
		edit:         edit,
		sessions:     sessions,
		allow:        allow,
		menuH:        handler.NewMenuHandler(repo, edit, hub, logger.With("component", "menu_handler")),
		authH:        handler.NewAuthHandler(storeClient, sessions, logger.With("component", "auth")),
		pageH:        handler.NewPageHandler(repo, logger.With("component", "pages")),
		loginLimiter: middleware.NewRateLimiter(10, time.Minute),
		logger:       logger,
	}, nil
}

// LoadMenu performs the initial menu load and seeds the editor's working copy.
func (s *Server) LoadMenu(ctx context.Context) {
	snap := s.repo.Reload(ctx)
	s.edit.Apply(snap)
	if snap.UsingFallback {
		s.logger.Warn("serving fallback menu", "error", snap.Err)
	} else {
		s.logger.Info("menu loaded", "categories", len(snap.Categories))
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessions
}

// RateLimiter returns the login limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.loginLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /", s.pageH.Home)
	mux.HandleFunc("GET /login", s.pageH.LoginPage)
	mux.Handle("POST /login", middleware.RateLimit(s.loginLimiter)(http.HandlerFunc(s.authH.Login)))
	mux.HandleFunc("GET /api/menu", s.menuH.PublicMenu)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("GET /health", s.healthHandler)

	requireAuth := middleware.RequireAuth(s.sessions, s.storeClient)
	requireAdmin := middleware.RequireAdmin(s.allow)

	// Authenticated routes; the restricted page stays outside the admin gate
	// so denied accounts have somewhere to land.
	mux.Handle("POST /logout", requireAuth(http.HandlerFunc(s.authH.Logout)))
	mux.Handle("GET /admin/restricted", requireAuth(http.HandlerFunc(s.pageH.RestrictedPage)))
	mux.Handle("GET /admin", requireAuth(requireAdmin(http.HandlerFunc(s.pageH.AdminPage))))
	mux.Handle("GET /ws", requireAuth(requireAdmin(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))))

	// Owner portal API
	adminAPI := http.NewServeMux()
	adminAPI.HandleFunc("GET /api/admin/menu", s.menuH.AdminState)
	adminAPI.HandleFunc("POST /api/admin/reload", s.menuH.Reload)
	adminAPI.HandleFunc("POST /api/admin/categories", s.menuH.CreateCategory)
	adminAPI.HandleFunc("PUT /api/admin/categories/{id}", s.menuH.UpdateCategory)
	adminAPI.HandleFunc("POST /api/admin/categories/{id}/select", s.menuH.SelectCategory)
	adminAPI.HandleFunc("POST /api/admin/categories/{id}/items", s.menuH.CreateItem)
	adminAPI.HandleFunc("PUT /api/admin/categories/{id}/items/{item_id}", s.menuH.UpdateItem)
	mux.Handle("/api/admin/", requireAuth(requireAdmin(adminAPI)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
