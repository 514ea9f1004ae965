// Package server exposes the tracker's health probes and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/pkg/log"
	"github.com/autopeer-io/seatrack/pkg/options"
)

// ReadyFunc reports why the tracker is not ready, or nil.
type ReadyFunc func() error

type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	log             log.Logger
}

// NewServer builds the router. ready may be nil.
func NewServer(opts *options.HttpOptions, ready ReadyFunc) *Server {
	return &Server{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(ready),
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		log:             log.WithName("http"),
	}
}

// NewRouter returns the handler serving /healthz, /readyz and /metrics.
func NewRouter(ready ReadyFunc) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
