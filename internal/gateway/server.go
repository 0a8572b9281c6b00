package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/opaline-dev/troupe/internal/graph"
	"github.com/opaline-dev/troupe/internal/state"
)

// Resumer continues a suspended run with an external state update. The
// workflow runner satisfies this.
type Resumer interface {
	Resume(ctx context.Context, runID string, update state.Patch) (graph.Outcome, error)
}

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server exposes the approval contract over HTTP so a human gateway can
// list pending approvals and drive resume.
type Server struct {
	store   *Store
	resumer Resumer
	logger  Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// ServerOption customizes the server.
type ServerOption func(*Server)

// WithServerLogger injects a logger.
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer wires the approval store to a resumer.
func NewServer(store *Store, resumer Resumer, opts ...ServerOption) *Server {
	s := &Server{store: store, resumer: resumer, logger: nopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes:
//
//	GET  /approvals/{run}          current approval record
//	POST /approvals/{run}/resolve  apply a decision and resume the run
//	GET  /health                   liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/approvals/", s.handleApprovals)
	return mux
}

// Start binds the listener and serves until Shutdown.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.server = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	server := s.server
	s.mu.Unlock()
	s.logger.Printf("gateway listening on %s", listener.Addr())
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway: serve: %w", err)
	}
	return nil
}

// Shutdown drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleApprovals(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/approvals/")
	runID, action, _ := strings.Cut(rest, "/")
	if runID == "" {
		http.NotFound(w, r)
		return
	}
	switch {
	case action == "" && r.Method == http.MethodGet:
		record, ok := s.store.Get(runID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no approval pending"})
			return
		}
		writeJSON(w, http.StatusOK, record)
	case action == "resolve" && r.Method == http.MethodPost:
		s.handleResolve(w, r, runID)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request, runID string) {
	var decision Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	decision.RunID = runID
	record, err := s.store.Resolve(decision)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUnknownRun) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	outcome, err := s.resumer.Resume(r.Context(), runID, ApprovalPatch(decision.Decision))
	if err != nil {
		s.logger.Printf("gateway: resume %s: %v", runID, err)
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":      record,
		"interrupted": outcome.Interrupted,
		"result":      outcome.State.Document(),
	})
}

// ApprovalPatch translates a decision into the state update resume merges.
func ApprovalPatch(decision DecisionValue) state.Patch {
	outcome := state.ApprovalDenied
	if decision == DecisionApproved {
		outcome = state.ApprovalApproved
	}
	return state.Patch{ApprovalOutcome: state.Approval(outcome)}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
