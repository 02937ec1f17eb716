// Package server hosts the Sovereign backend proxy: a small HTTP surface
// that fronts the generative backend for clients that must not hold the API
// key, plus a websocket feed of task transitions for external monitors.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/orchestrator"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8790"

// Server is the backend proxy. It exposes:
//
//	POST /api/generate  proxy one generation round-trip to the upstream
//	GET  /ws            websocket stream of task transition events
//	GET  /health        liveness probe
type Server struct {
	addr    string
	gateway llm.Gateway
	hub     *Hub
	log     zerolog.Logger

	httpServer *http.Server
}

// Option configures the Server.
type Option func(*Server)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server proxying generation calls to gateway.
func New(gateway llm.Gateway, opts ...Option) *Server {
	s := &Server{
		addr:    DefaultAddr,
		gateway: gateway,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.log)
	return s
}

// PublishEvent pushes a task transition to all connected websocket clients.
// Safe to register directly as an orchestrator observer.
func (s *Server) PublishEvent(ev orchestrator.Event) {
	s.hub.BroadcastJSON(ev)
}

// ClientCount reports connected websocket clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Handler returns the full route tree wrapped in the CORS policy. The proxy
// is CORS-open so a browser client on any origin can reach it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/ws", s.hub.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// Start runs the server until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("proxy listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.hub.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.hub.Stop()
	return err
}

// handleGenerate proxies one generation round-trip. The request body mirrors
// llm.GenerateRequest; the response is {text} on success and {error} with a
// mapped status on failure.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req llm.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	text, err := s.gateway.Generate(r.Context(), &req)
	if err != nil {
		status := statusFor(err)
		s.log.Warn().Err(err).Int("status", status).Str("model", req.Model).Msg("generate failed")
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// statusFor maps a gateway error onto the proxy's response status. Rate-limit
// and overload statuses pass through so the client's kind tagging survives
// the hop; everything else is a 502 from the client's point of view.
func statusFor(err error) int {
	var lerr *llm.Error
	if errors.As(err, &lerr) {
		switch {
		case lerr.Kind == llm.KindValidation:
			return http.StatusBadRequest
		case lerr.Status == http.StatusTooManyRequests, lerr.Status == http.StatusServiceUnavailable:
			return lerr.Status
		}
	}
	return http.StatusBadGateway
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "sovereign-proxy",
		"clients": s.hub.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
