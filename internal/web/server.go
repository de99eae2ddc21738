// Package web serves the Daily Ayah pages, JSON API and admin endpoints.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dailyayah/dailyayah/internal/logging"
	"github.com/dailyayah/dailyayah/internal/mail"
	"github.com/dailyayah/dailyayah/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Config holds server configuration.
type Config struct {
	Port       int
	AdminToken string
	BaseURL    string
	Version    string
}

// Server owns the HTTP surface over the verse store and the subscription
// registry. Registry and Sender are nil when the mail feature is disabled;
// the subscription routes then answer 503.
type Server struct {
	cfg       Config
	store     *store.Store
	registry  *mail.Registry
	sender    *mail.Sender
	templates *template.Template
	hub       *Hub
}

// New builds a Server and starts its websocket hub.
func New(cfg Config, st *store.Store, registry *mail.Registry, sender *mail.Sender) (*Server, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s := &Server{
		cfg:       cfg,
		store:     st,
		registry:  registry,
		sender:    sender,
		templates: tmpl,
		hub:       NewHub(),
	}
	go s.hub.Run()
	return s, nil
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/random", s.handleRandomPage)
	mux.HandleFunc("/search", s.handleSearchPage)
	mux.HandleFunc("/verse/", s.handleVersePage)
	mux.HandleFunc("/subscribe", s.handleSubscribePage)
	mux.HandleFunc("/unsubscribe/", s.handleUnsubscribePage)
	mux.HandleFunc("/static/", s.handleStatic)

	// JSON API
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/verse-of-the-day", s.handleAPIVerseOfTheDay)
	mux.HandleFunc("/api/random", s.handleAPIRandom)
	mux.HandleFunc("/api/search", s.handleAPISearch)
	mux.HandleFunc("/api/verse/", s.handleAPIVerse)
	mux.HandleFunc("/api/surahs", s.handleAPISurahs)
	mux.HandleFunc("/api/integrity", s.handleAPIIntegrity)
	mux.HandleFunc("/api/subscribe", s.handleAPISubscribe)
	mux.HandleFunc("/api/unsubscribe", s.handleAPIUnsubscribe)

	// Admin
	mux.HandleFunc("/api/admin/reload", s.handleAdminReload)
	mux.HandleFunc("/api/admin/ws/reload", s.handleReloadSocket)

	return logging.CombinedMiddleware(securityHeaders(mux))
}

// Start runs the server on the configured port until ctx is cancelled,
// then drains in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	logging.ServerStartup("web", "http", s.cfg.Port, "verses", s.store.Len())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logging.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	// The embed FS roots at "static/", matching the URL prefix.
	http.FileServer(http.FS(staticFS)).ServeHTTP(w, r)
}
