package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/bg/component"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
)

// App runs a bg process with uniform lifecycle management. The type
// parameter C is the config type; any struct embedding config.ServiceConfig
// satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(srv)
//	app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	shutdown        <-chan struct{}

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		shutdown:        o.signals,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Components = component.NewRegistry(app.Logger)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Health aggregates the health of every registered component that reports it.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	return observability.CheckAll(ctx, a.Name, a.Version, a.Components.HealthCheckers()...)
}

// Run executes the full lifecycle for long-running services:
// start components, OnStart hooks, ready check, OnReady hooks, block until
// a shutdown signal, OnStop hooks, stop components.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// ErrInterrupted is returned by RunTask when a signal or the shutdown
// trigger arrives before the task finishes.
var ErrInterrupted = errors.New("interrupted")

// RunTask executes a finite task with the same lifecycle. A signal or the
// shutdown trigger cancels the task's context, stops the components and
// returns ErrInterrupted without waiting for the task to return. The
// task's error takes precedence over shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- task(taskCtx) }()

	var taskErr error
	select {
	case taskErr = <-done:
	case sig := <-sigCh:
		a.Logger.Info("Received signal, abandoning task", map[string]interface{}{
			"signal": sig.String(),
		})
		cancel()
		taskErr = fmt.Errorf("%w by %s", ErrInterrupted, sig)
	case <-a.shutdown:
		cancel()
		taskErr = ErrInterrupted
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup starts components and runs the start and ready hooks.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if sh := a.Health(ctx); !sh.IsUp() {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"components": sh.Components,
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Debug("Application started", logger.MergeWithDuration(map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	}, time.Since(start)))
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal, the configured
// shutdown trigger, or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-a.shutdown:
		return nil
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the stop hooks and stops all components within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = errors.Join(shutdownErr, err)
	}

	a.Logger.Debug("Application shutdown complete")
	return shutdownErr
}
