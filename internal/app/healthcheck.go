package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
)

// Sweep phases reported by the health endpoint.
const (
	PhaseIdle          = "idle"
	PhasePlanning      = "planning"
	PhaseBootstrapping = "bootstrapping"
	PhaseDispatching   = "dispatching"
	PhaseReporting     = "reporting"
	PhaseUploading     = "uploading"
)

func (app *App) setPhase(phase string) {
	app.phase.Store(phase)
	ctxlog.FromContext(app.ctx).Debug("Sweep phase changed.", "phase", phase)
}

// Phase returns the sweep phase the app is currently in.
func (app *App) Phase() string {
	phase, _ := app.phase.Load().(string)
	return phase
}

func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK %s %s\n", app.config.Mode, app.Phase())
}

// healthCheckServer serves /health while the sweep runs so long sweeps on
// shared machines can be watched from outside.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	if app.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", app.healthHandler)

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed", "error", err)
		}
	}(app.httpServer)
}

func (app *App) closeHealthCheckServer() error {
	if app.httpServer == nil {
		return nil
	}
	logger := ctxlog.FromContext(app.ctx)

	// The sweep context may already be cancelled by a signal.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down health check server.")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	app.httpServer = nil
	return nil
}
