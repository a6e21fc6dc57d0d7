package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/egomobility/vehicle-signals/pkg/cache"
	"github.com/egomobility/vehicle-signals/pkg/signal"
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// HTTPServer serves the vehicle and signal API.
type HTTPServer struct {
	server   *http.Server
	router   *mux.Router
	store    *store.RedisStore
	registry *signal.Registry
	cache    *cache.VehicleCache
	port     int
}

// NewHTTPServer creates the API server and wires its routes.
func NewHTTPServer(port int, serviceName string, st *store.RedisStore, registry *signal.Registry, c *cache.VehicleCache) *HTTPServer {
	s := &HTTPServer{
		router:   mux.NewRouter(),
		store:    st,
		registry: registry,
		cache:    c,
		port:     port,
	}
	s.setupRoutes(serviceName)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}

	return s
}

func (s *HTTPServer) setupRoutes(serviceName string) {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/vehicles", s.handleListVehicles).Methods("GET")
	api.HandleFunc("/vehicles", s.handleCreateVehicle).Methods("POST")
	api.HandleFunc("/vehicles/{vehicle_id}", s.handleGetVehicle).Methods("GET")
	api.HandleFunc("/vehicles/{vehicle_id}", s.handleDeleteVehicle).Methods("DELETE")

	api.HandleFunc("/vehicles/{vehicle_id}/signals", s.handleGetSignals).Methods("GET")
	api.HandleFunc("/vehicles/{vehicle_id}/signals", s.handlePatchSignals).Methods("PATCH")
	api.HandleFunc("/vehicles/{vehicle_id}/signals", s.handleResetSignals).Methods("DELETE")
	api.HandleFunc("/vehicles/{vehicle_id}/signals/{name}", s.handleGetSignal).Methods("GET")

	api.HandleFunc("/vehicles/{vehicle_id}/events", s.handleGetEvents).Methods("GET")
	api.HandleFunc("/vehicles/{vehicle_id}/events", s.handleDeleteEvents).Methods("DELETE")

	api.HandleFunc("/vehicles/{vehicle_id}/logs/signals", s.handleGetSignalLogs).Methods("GET")

	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)
	s.router.Use(TracingMiddleware(serviceName))
}

// Router returns the configured router.
func (s *HTTPServer) Router() *mux.Router {
	return s.router
}

// Start begins serving the API on the configured port.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the API server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP server stopped")

	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.Debugf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message}); err != nil {
		logrus.Errorf("failed to encode error response: %v", err)
	}
}
