// Package server provides the HTTP server for the Signova sign recognition system.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/logging"
	"github.com/ayusman/signova/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Log       logrus.FieldLogger
}

// Server represents the HTTP server for the Signova application.
type Server struct {
	config Config
	router chi.Router
	hub    *StatusHub
	log    logrus.FieldLogger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		log:    logging.OrDiscard(config.Log).WithField("component", "server"),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.hub = NewStatusHub(a, s.log)

		r.Route("/api", func(r chi.Router) {
			api.NewRecognitionHandler(a).Routes(r)
			api.NewSamplesHandler(a, a.Store()).Routes(r)
			if a.Store() != nil {
				api.NewSentencesHandler(a.Store()).Routes(r)
			}
			r.Get("/stream", NewStreamHandler(a).ServeHTTP)
			r.Get("/ws", s.hub.ServeHTTP)
		})
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	})
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)
	if a := s.config.App; a != nil {
		uptime = a.Uptime()
	}
	response := map[string]any{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.App != nil {
		response["session"] = s.config.App.Status("").State
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops background broadcasting.
func (s *Server) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
