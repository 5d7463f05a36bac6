package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/jsonconfig"
)

// runStatus is the view of the running tree served by /status.
type runStatus struct {
	mu      sync.Mutex
	tree    string
	id      string
	started time.Time
	ticks   int64
	last    bt.Status
}

func (s *runStatus) start(tree *bt.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree.Name
	s.id = tree.ID.String()
	s.started = time.Now().UTC()
	s.ticks = 0
	s.last = bt.Invalid
}

func (s *runStatus) record(status bt.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	s.last = status
}

func (s *runStatus) snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]any{
		"tree":   s.tree,
		"id":     s.id,
		"ticks":  s.ticks,
		"status": s.last.String(),
	}
	if !s.started.IsZero() {
		out["started"] = s.started.Format(time.RFC3339)
	}
	return out
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the running tree's progress as JSON. Repeated
// `node` query parameters narrow the node map to those subtrees.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	watch := a.watch
	if raw := r.URL.Query()["node"]; len(raw) > 0 {
		var err error
		if watch, err = parseAddresses(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	snap := a.status.snapshot()
	nodes := make(map[string]any)
	for addr, status := range filterStatuses(a.nodes.Snapshot(r.Context()), watch) {
		nodes[addr] = status.String()
	}
	snap["nodes"] = nodes
	fmt.Fprintln(w, jsonconfig.Indent(snap))
}

func (a *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (a *App) healthCheckServer() {
	a.logger.Debug("Configuring health check server.")
	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)

	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.healthMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := a.httpServer

	go func() {
		a.logger.Info("Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthCheckServer() error {
	if a.httpServer == nil {
		return nil
	}
	a.logger.Debug("Closing health check server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := a.httpServer
	a.httpServer = nil
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	a.logger.Debug("Health check server shut down gracefully.")
	return nil
}
