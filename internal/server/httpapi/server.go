// Package httpapi exposes the access service over HTTP: the login,
// register and verification operations plus a small administrative
// surface for listing, inspecting and removing accounts.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	access  *access.Service
	store   *store.Store
	logger  logging.Logger
}

func NewServer(address string, a *access.Service, s *store.Store, logger logging.Logger) *Server {
	return &Server{
		address: address,
		access:  a,
		store:   s,
		logger:  logger.With("module", "http_server"),
	}
}

// Router builds the request router. It is exported so tests can drive the
// handlers without a listening socket.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)

		r.Route("/verify", func(r chi.Router) {
			r.Post("/place", s.handleVerifyPlace)
			r.Post("/reset", s.handleVerifyReset)
			r.Post("/state", s.handleVerifyState)
			r.Post("/complete", s.handleVerifyComplete)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Get("/stats", s.handleAccountStats)
			r.Delete("/", s.handleDeleteAccount)
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Info(r.Context(), "request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
