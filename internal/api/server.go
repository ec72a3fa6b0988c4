// Package api exposes the resolver and ticket lifecycle over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parkhaus/parking-cli/internal/catalog"
	"github.com/parkhaus/parking-cli/internal/resolver"
	"github.com/parkhaus/parking-cli/internal/ticket"
)

// Server serves the parking HTTP API.
type Server struct {
	srv *http.Server
}

// New builds the router and wires the handlers.
func New(port int, cat *catalog.Catalog, res *resolver.Resolver, mgr *ticket.Manager) *Server {
	h := &handlers{catalog: cat, resolver: res, manager: mgr}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Get("/resolve", h.resolve)
	r.Post("/catalog/reload", h.reloadCatalog)
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.startSession)
		r.Delete("/{id}", h.cancelSession)
		r.Get("/active", h.activeTicket)
		r.Get("/history", h.ticketHistory)
	})

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Handler returns the underlying router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run listens and serves until Shutdown is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return eris.Wrapf(err, "api: listen %s", s.srv.Addr)
	}

	zap.L().Info("api server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "api: serve")
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
