// ABOUTME: Web UI server with embedded templates
// ABOUTME: Serves the gated contact dashboard, sign-in form, JSON API, and metrics
package web

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/logging"
	"github.com/harperreed/torque/metrics"
	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/sync"
)

//go:embed templates/*
var templatesFS embed.FS

var pageNames = []string{"dashboard", "login", "not_configured"}

type Deps struct {
	DB        *sql.DB
	Session   *sync.Session
	Provider  auth.Provider
	Directory config.DirectoryConfig
	Logger    *log.Logger
}

type Server struct {
	db        *sql.DB
	session   *sync.Session
	provider  auth.Provider
	directory config.DirectoryConfig
	logger    *log.Logger
	pages     map[string]*template.Template
}

func NewServer(deps Deps) (*Server, error) {
	funcMap := template.FuncMap{
		"dollars": func(cents int64) string {
			return fmt.Sprintf("$%.2f", float64(cents)/100)
		},
		"when": func(t *time.Time) string {
			if t == nil {
				return "never"
			}
			return t.Format("2006-01-02 15:04")
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		pages[name] = tmpl
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Server{
		db:        deps.DB,
		session:   deps.Session,
		provider:  deps.Provider,
		directory: deps.Directory,
		logger:    logger,
		pages:     pages,
	}, nil
}

// Router wires every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger.StandardLog(), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(rejectCrossOrigin)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.Handler().ServeHTTP(w, r)
	})

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleDashboard)
		r.Post("/sync", s.handleSync)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireUserJSON)
		r.Get("/contacts", s.handleContactsJSON)
		r.Get("/deals", s.handleDealsJSON)
	})

	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

type userCtxKey struct{}

func userFrom(r *http.Request) *auth.User {
	user, _ := r.Context().Value(userCtxKey{}).(*auth.User)
	return user
}

// requireUser gates HTML pages on the identity session.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.RequireUser(s.provider)
		switch {
		case errors.Is(err, auth.ErrProviderUnavailable):
			s.render(w, http.StatusServiceUnavailable, "not_configured", nil)
			return
		case err != nil:
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func (s *Server) requireUserJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.RequireUser(s.provider)
		switch {
		case errors.Is(err, auth.ErrProviderUnavailable):
			writeJSONError(w, http.StatusServiceUnavailable, err)
			return
		case err != nil:
			writeJSONError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	view := dashboard.Build(s.session.Snapshot(), r.URL.Query().Get("q"))

	pipeline, err := db.PipelineSummary(s.db, user.UID)
	if err != nil {
		s.logger.Warn("failed to load pipeline", "err", err)
	}

	s.render(w, http.StatusOK, "dashboard", map[string]interface{}{
		"Title":     "Contacts",
		"User":      user,
		"View":      view,
		"Pipeline":  pipeline,
		"Directory": s.directory.BaseURL,
	})
}

// handleSync runs a sync against the configured directory only. Failures land
// in the session state and show on the dashboard.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session.Sync(r.Context(), s.directory.BaseURL, s.directory.APIKey); err != nil {
		s.logger.Warn("sync failed", "err", err)
	}

	target := "/"
	if q := r.FormValue("q"); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if !s.provider.Configured() {
		s.render(w, http.StatusServiceUnavailable, "not_configured", nil)
		return
	}
	if s.provider.CurrentUser() != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login", map[string]interface{}{"Title": "Sign in", "Email": ""})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.provider.Configured() {
		s.render(w, http.StatusServiceUnavailable, "not_configured", nil)
		return
	}

	email := r.FormValue("email")
	if _, err := s.provider.SignIn(r.Context(), email, r.FormValue("password")); err != nil {
		s.render(w, http.StatusUnauthorized, "login", map[string]interface{}{
			"Title": "Sign in",
			"Email": email,
			"Error": err.Error(),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.SignOut(r.Context()); err != nil {
		if errors.Is(err, auth.ErrProviderUnavailable) {
			s.render(w, http.StatusServiceUnavailable, "not_configured", nil)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleContactsJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Build(s.session.Snapshot(), r.URL.Query().Get("q")))
}

func (s *Server) handleDealsJSON(w http.ResponseWriter, r *http.Request) {
	stage := r.URL.Query().Get("stage")
	deals := []models.Deal{}
	for _, deal := range db.GetDealsForUser(r.Context(), s.db, userFrom(r).UID) {
		if stage == "" || deal.Stage == stage {
			deals = append(deals, deal)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deals": deals})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{"Title": "Not configured"}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.Error("template error", "page", page, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
