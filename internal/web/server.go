//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package web serves the password protected query assistant UI.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-orderbi/internal/assistant"
	"github.com/pgEdge/pgedge-orderbi/internal/config"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// QueryRunner executes reviewed SQL.
type QueryRunner interface {
	Run(ctx context.Context, sql string) (*assistant.Result, error)
}

// Server is the query assistant web server.
type Server struct {
	cfg      config.WebConfig
	gen      assistant.Generator
	runner   QueryRunner
	sessions *SessionStore
	tmpl     *template.Template
	router   *mux.Router
	log      zerolog.Logger
}

// NewServer creates a server. Configuration problems with the password
// hash are reported on the login page rather than here.
func NewServer(cfg config.WebConfig, gen assistant.Generator, runner QueryRunner) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"truncate": truncate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if cfg.HistorySize < 1 {
		cfg.HistorySize = config.DefaultConfig().Web.HistorySize
	}

	s := &Server{
		cfg:      cfg,
		gen:      gen,
		runner:   runner,
		sessions: NewSessionStore(),
		tmpl:     tmpl,
		log:      logging.Component("web"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	app := r.NewRoute().Subrouter()
	app.Use(s.requireLogin)
	app.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	app.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	app.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	app.HandleFunc("/history/clear", s.handleClearHistory).Methods(http.MethodPost)
	app.HandleFunc("/history/{index:[0-9]+}/rerun", s.handleRerun).Methods(http.MethodPost)

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("Query assistant listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info().Msg("Shutting down query assistant")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

type ctxKey struct{}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *Session {
	sess, _ := r.Context().Value(ctxKey{}).(*Session)
	return sess
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}

func truncate(n int, s string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
