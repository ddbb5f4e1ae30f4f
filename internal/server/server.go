// Package server is the tool shell: it maps named tools onto the proxy
// core and serializes results back to the calling protocol. It contains
// no policy of its own.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/memgate/internal/proxy"
)

// Server exposes the proxied operations over a local HTTP endpoint.
type Server struct {
	svc    *proxy.Service
	tools  map[string]tool
	server *http.Server
}

// New creates the tool server.
func New(svc *proxy.Service, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		svc: svc,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
	s.tools = s.registry()

	mux.HandleFunc("/tools", s.handleList)
	mux.HandleFunc("/tools/", s.handleTool)
	mux.HandleFunc("/healthz", s.handleLiveness)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.descriptors())
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/tools/")
	t, ok := s.tools[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown tool %q", name), http.StatusNotFound)
		return
	}

	args := map[string]any{}
	if r.ContentLength != 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &args); err != nil {
				http.Error(w, "body must be a JSON object", http.StatusBadRequest)
				return
			}
		}
	}

	reqID := uuid.NewString()
	start := time.Now()

	result, err := t.invoke(r.Context(), args)
	if err != nil {
		slog.Warn("tool failed",
			"tool", name,
			"request_id", reqID,
			"duration", time.Since(start),
			"error", err,
		)
		writeOutcome(w, err)
		return
	}

	slog.Info("tool ok", "tool", name, "request_id", reqID, "duration", time.Since(start))
	writeJSON(w, http.StatusOK, envelope{OK: true, Result: result})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if t, ok := s.svc.LastHealthy(); ok {
		resp["backend_last_healthy"] = t.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
