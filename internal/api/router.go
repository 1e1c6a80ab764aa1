// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wingedpig/vibetable/internal/api/handlers"
	"github.com/wingedpig/vibetable/internal/api/middleware"
	"github.com/wingedpig/vibetable/internal/api/version"
	"github.com/wingedpig/vibetable/internal/dataset"
	"github.com/wingedpig/vibetable/internal/events"
	"github.com/wingedpig/vibetable/internal/ingest"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Store            ingest.Store
	MaxDocumentBytes int
	Datasets         *dataset.Manager
	EventBus         events.EventBus
	Gatherer         prometheus.Gatherer // nil disables /metrics
	Defaults         handlers.ConvertDefaults
	FilePrefix       handlers.PrefixFunc
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)
	r.Use(version.Middleware)

	documentHandler := handlers.NewDocumentHandler(deps.Store, deps.MaxDocumentBytes)

	// Original ingestion endpoints, kept for deployed producers
	r.HandleFunc("/upload", documentHandler.LegacyUpload).Methods("POST", "OPTIONS")
	r.HandleFunc("/latest", documentHandler.LegacyLatest).Methods("GET", "OPTIONS")

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Document handlers
	api.HandleFunc("/documents/latest", documentHandler.Latest).Methods("GET")
	api.HandleFunc("/documents/latest", documentHandler.Put).Methods("PUT")

	// Dataset handlers
	datasetHandler := handlers.NewDatasetHandler(deps.Datasets, deps.Store, deps.Defaults, deps.FilePrefix)
	api.HandleFunc("/dataset", datasetHandler.Get).Methods("GET")
	api.HandleFunc("/dataset", datasetHandler.Clear).Methods("DELETE")
	api.HandleFunc("/dataset/convert", datasetHandler.Convert).Methods("POST")
	api.HandleFunc("/dataset/relabel", datasetHandler.Relabel).Methods("POST")
	api.HandleFunc("/dataset/wide", datasetHandler.Wide).Methods("GET")
	api.HandleFunc("/dataset/long", datasetHandler.Long).Methods("GET")

	api.HandleFunc("/labels", handlers.Labels).Methods("GET")

	// Event handlers
	eventHandler := handlers.NewEventHandler(deps.EventBus)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")
	api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")

	// Catch-all so unmatched API requests still pass through the middleware.
	// CORS answers preflight before this handler runs.
	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, handlers.ErrBadRequest, "method "+r.Method+" not allowed on "+r.URL.Path)
	})

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	router := NewRouter(deps)
	return &Server{
		router: router,
		cfg:    cfg,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("API server listening on http://%s", ln.Addr())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")

	// Create a timeout context if none provided
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
