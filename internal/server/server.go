// Package server exposes the airforms HTTP API: Airtable OAuth, the
// authenticated form builder endpoints and the public form endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/oauth2"

	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/store"
	"github.com/goliatone/go-airforms/pkg/submission"
)

// AirtableAPI is the part of the Airtable client the builder endpoints use.
type AirtableAPI interface {
	Bases(ctx context.Context) ([]airtable.Base, error)
	Tables(ctx context.Context, baseID string) ([]airtable.Table, error)
	Fields(ctx context.Context, baseID, tableID string) ([]airtable.Field, error)
	WhoAmI(ctx context.Context) (airtable.Identity, error)
}

// AirtableFactory returns an Airtable client acting as user.
type AirtableFactory func(ctx context.Context, user model.User) AirtableAPI

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOAuth sets the Airtable OAuth client registration.
func WithOAuth(cfg *oauth2.Config) Option {
	return func(s *Server) {
		s.oauth = cfg
	}
}

// WithAirtable overrides how per-user Airtable clients are built.
func WithAirtable(factory AirtableFactory) Option {
	return func(s *Server) {
		if factory != nil {
			s.airtable = factory
		}
	}
}

// WithFormReader sets the read path for public form lookups, typically a
// store.CachedForms wrapping the main store.
func WithFormReader(forms store.Forms) Option {
	return func(s *Server) {
		if forms != nil {
			s.forms = forms
		}
	}
}

// WithSubmissions sets the submission service.
func WithSubmissions(svc *submission.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.submissions = svc
		}
	}
}

// WithJWTSecret sets the HMAC key for session tokens.
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		s.jwtSecret = []byte(secret)
	}
}

// WithClientURL sets the browser application origin used for redirects and
// CORS.
func WithClientURL(raw string) Option {
	return func(s *Server) {
		if raw != "" {
			s.clientURL = raw
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server wires HTTP handlers to the stores and services.
type Server struct {
	store       store.Store
	forms       store.Forms
	submissions *submission.Service
	airtable    AirtableFactory
	oauth       *oauth2.Config
	jwtSecret   []byte
	clientURL   string
	logger      *slog.Logger
	now         func() time.Time
	router      chi.Router
}

// New builds a Server around st.
func New(st store.Store, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}
	s := &Server{
		store:     st,
		forms:     st,
		clientURL: "http://localhost:5173",
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if len(s.jwtSecret) == 0 {
		return nil, errors.New("server: jwt secret is required")
	}
	if s.airtable == nil {
		oauthCfg, logger := s.oauth, s.logger
		s.airtable = func(ctx context.Context, user model.User) AirtableAPI {
			return airtable.ForUser(ctx, oauthCfg, user, airtable.WithLogger(logger))
		}
	}
	if s.submissions == nil {
		writer := submission.AirtableWriter{OAuth: s.oauth, Logger: s.logger}
		s.submissions = submission.NewService(s.forms, st, st, writer, submission.WithLogger(s.logger))
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.clientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/airtable/login", s.handleLogin)
		r.Get("/airtable/callback", s.handleCallback)
		r.With(s.requireUser).Get("/me", s.handleMe)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/airtable", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/bases", s.handleBases)
			r.Get("/tables", s.handleTables)
			r.Get("/fields", s.handleFields)
		})

		r.Route("/forms", func(r chi.Router) {
			r.With(s.requireUser).Post("/", s.handleCreateForm)
			r.With(s.requireUser).Get("/", s.handleListForms)
			r.Route("/{formID}", func(r chi.Router) {
				r.Get("/", s.handleGetForm)
				r.With(s.requireUser).Put("/", s.handleUpdateForm)
				r.With(s.requireUser).Delete("/", s.handleDeleteForm)
				r.With(s.requireUser).Get("/submissions", s.handleListSubmissions)
				r.Post("/submit", s.handleSubmit)
				r.Post("/preview", s.handlePreview)
				r.Get("/preview/ws", s.handlePreviewSocket)
			})
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", s.now().Sub(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
