package http

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pricecheck/frontend/cart"
	loginflow "pricecheck/frontend/login"
	"pricecheck/frontend/scan"
	sessioncontext "pricecheck/frontend/shared/context"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/cache"
	sessioncookie "pricecheck/infrastructure/session"
	"pricecheck/infrastructure/sqlite"
	"pricecheck/models"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB           *sqlite.DB
	SessionCache *cache.SessionCache
	CartStore    *cart.Store
	ScanGate     *scan.Gate
	Audit        *audit.Service
	TaxRate      float64
}

// NewServer creates a new http server.
func NewServer(addr string, db *sqlite.DB, sessionCache *cache.SessionCache, cartStore *cart.Store, scanGate *scan.Gate, auditSvc *audit.Service, taxRate float64) *Server {
	s := &Server{
		Addr:         addr,
		router:       chi.NewRouter(),
		DB:           db,
		SessionCache: sessionCache,
		CartStore:    cartStore,
		ScanGate:     scanGate,
		Audit:        auditSvc,
		TaxRate:      cart.ClampTaxRate(taxRate),
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	// Handle root requests - check auth status but don't require it.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		session, ok := s.resolveSession(r.Context(), sessionCookie.Value)
		if !ok || session.Expired() {
			http.SetCookie(w, sessioncookie.SessionCookie("", -1))
			http.SetCookie(w, sessioncookie.ExpiresCookie("", -1))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, "/lookup", http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Group(func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterFrontendRoutes(r)
		s.RegisterAPIRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// AuthenticateMiddleware loads the session and rejects expired or missing
// tokens. Pages bounce to the login screen; API routes answer 401 JSON so
// the page script can surface the session-expired state in place.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			s.rejectUnauthenticated(w, r)
			return
		}

		sessionToken := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), sessionToken)
		if !ok {
			slog.Warn("session not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			s.rejectUnauthenticated(w, r)
			return
		}

		if session.Expired() {
			s.purgeSession(sessionToken)
			http.SetCookie(w, sessioncookie.SessionCookie("", -1))
			http.SetCookie(w, sessioncookie.ExpiresCookie("", -1))
			s.rejectUnauthenticated(w, r)
			return
		}

		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "session expired"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// logoutHandler clears cookies and drops every trace of the session,
// including its cart and scan debounce record.
func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessioncookie.CookieName); err == nil && cookie.Value != "" {
			s.purgeSession(cookie.Value)
		}
		http.SetCookie(w, sessioncookie.SessionCookie("", -1))
		http.SetCookie(w, sessioncookie.ExpiresCookie("", -1))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// purgeSession drops all per-session state: db row, cache entry, cart, and
// the scan debounce record.
func (s *Server) purgeSession(token string) {
	s.SessionCache.Delete(token)
	s.CartStore.Delete(token)
	s.ScanGate.Reset(token)
	if err := loginflow.DeleteSessionByToken(context.Background(), s.DB, token); err != nil && err != sql.ErrNoRows {
		slog.Error("cannot delete session from DB", slog.String("session_id", token), slog.Any("err", err))
	}
}

func (s *Server) resolveSession(ctx context.Context, token string) (session models.Session, ok bool) {
	if cached, found := s.SessionCache.Find(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("load session from db failed", slog.String("session_id", token), slog.Any("err", err))
		}
		return session, false
	}

	s.SessionCache.Add(dbSession)
	return dbSession, true
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
