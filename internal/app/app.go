package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/procexec"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	runner     procexec.Runner
	httpClient *http.Client
	now        func() time.Time

	ctx        context.Context
	httpServer *http.Server
	phase      atomic.Value
}

// Option customizes an App.
type Option func(*App)

// WithRunner replaces the os/exec command runner.
func WithRunner(r procexec.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithHTTPClient sets the client used for result uploads.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		runner: procexec.NewExec(),
		now:    time.Now,
		ctx:    ctxlog.WithLogger(context.Background(), logger),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setPhase(PhaseIdle)
	logger.Debug("Logger configured successfully.")
	return a
}
