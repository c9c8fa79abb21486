// Package server provides the local HTTP server: status and journal API,
// a live MJPEG preview and a WebSocket feed of frame reports.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Application is the part of app.App the server uses.
type Application interface {
	Status() app.Status
	SetEnabled(enabled bool)
	Snapshot() ([]byte, bool)
	OnReport(fn func(app.Report))
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       Application
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	feed   *FeedHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventHandler(s.config.Store))
	}

	if a := s.config.App; a != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(
			func() any { return a.Status() },
			a.SetEnabled,
		))
		s.mux.Handle("/api/stream", NewStreamHandler(a.Snapshot))

		s.feed = NewFeedHandler()
		a.OnReport(s.feed.Publish)
		s.mux.Handle("/api/feed", s.feed)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// healthResponse is the /api/health body. Enabled and Running are omitted
// when the server has no application.
type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Enabled *bool  `json:"enabled,omitempty"`
	Running *bool  `json:"running,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
	}
	if s.config.App != nil {
		st := s.config.App.Status()
		response.Enabled = &st.Enabled
		response.Running = &st.Running
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close disconnects all feed clients.
func (s *Server) Close() {
	if s.feed != nil {
		s.feed.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
