// Package gateway exposes the dispatcher over HTTP and MCP.
//
// The HTTP surface is a small JSON API: GET /v1/calls lists the registered
// call names and GET /v1/calls/{name}?input=... runs one call with the
// configured credentials. The MCP surface registers one tool per call.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/debug"
)

// DefaultTimeout bounds a call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds gateway settings.
type Config struct {
	// Timeout bounds the wait for a call's callback.
	Timeout time.Duration

	// Credentials are handed to the adapter of the same name.
	Credentials map[string]apicall.Credentials
}

// CallResponse is the body of GET /v1/calls/{name}.
type CallResponse struct {
	Call   string         `json:"call"`
	Result apicall.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ListResponse is the body of GET /v1/calls.
type ListResponse struct {
	Calls []string `json:"calls"`
}

// Server serves the JSON API.
type Server struct {
	dispatcher *apicall.Dispatcher
	config     Config
	mux        *http.ServeMux
}

// NewServer creates a Server for d.
func NewServer(d *apicall.Dispatcher, cfg Config) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Server{
		dispatcher: d,
		config:     cfg,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /v1/calls", s.handleList)
	s.mux.HandleFunc("GET /v1/calls/{name}", s.handleCall)
	return s
}

// Handler returns the http.Handler for this server, with X-Request-ID
// propagation applied.
func (s *Server) Handler() http.Handler {
	return requestIDMiddleware(s.mux)
}

// handleList handles GET /v1/calls.
func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Calls: s.dispatcher.Names()})
}

// handleCall handles GET /v1/calls/{name}.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	input := r.URL.Query().Get("input")

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
	defer cancel()

	debug.Log(debug.Gateway, "dispatching", "call", name, "input", debug.Truncate(input, 200))
	res, err := s.dispatcher.Call(ctx, name, input, s.config.Credentials[name])

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, CallResponse{Call: name, Result: res})
	case errors.Is(err, apicall.ErrUnknownCall):
		writeJSON(w, http.StatusNotFound, CallResponse{Call: name, Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, CallResponse{Call: name, Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// The client went away; nothing useful can be written.
		debug.Log(debug.Gateway, "client canceled call", "call", name)
	default:
		writeJSON(w, http.StatusBadGateway, CallResponse{Call: name, Error: err.Error()})
	}
}

// requestIDMiddleware carries an inbound X-Request-ID into the call context
// and echoes it on the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			r = r.WithContext(apicall.ContextWithRequestID(r.Context(), id))
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log(debug.Gateway, "writing response failed", "error", err)
	}
}
