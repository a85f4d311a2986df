package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
	"github.com/kbukum/bg/resilience"
	"github.com/kbukum/bg/validation"
)

var _ observability.HealthChecker = (*Adapter)(nil)

// Name identifies the adapter as a lifecycle component.
func (a *Adapter) Name() string { return "launcher" }

// Start fails fast when the configured working directory is unusable.
func (a *Adapter) Start(ctx context.Context) error {
	if h := a.CheckHealth(ctx); h.Status == observability.HealthStatusDown {
		return fmt.Errorf("launcher.dir %q: %s", a.config.Dir, h.Message)
	}
	return nil
}

// Stop is a no-op: launched children are never signalled on shutdown.
func (a *Adapter) Stop(context.Context) error { return nil }

// Config configures a launch adapter.
type Config struct {
	// Debug forces the command description on for every launch.
	Debug bool `yaml:"debug,omitempty" mapstructure:"debug"`
	// Dir is the default working directory for requests that set none.
	Dir string `yaml:"dir,omitempty" mapstructure:"dir"`
	// Env is prepended to every request's extra environment.
	Env []string `yaml:"env,omitempty" mapstructure:"env"`
	// Reap waits on detached children in the background. Set by the server.
	Reap bool `yaml:"reap,omitempty" mapstructure:"reap"`
	// MaxConcurrent caps launches in flight; 0 means unlimited. A capturing
	// launch holds its slot until the child exits.
	MaxConcurrent int `yaml:"max_concurrent,omitempty" mapstructure:"max_concurrent"`
	// MaxWait is how long a launch queues for a slot before LAUNCHER_BUSY.
	MaxWait time.Duration `yaml:"max_wait,omitempty" mapstructure:"max_wait"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Dir = strings.TrimSpace(c.Dir)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.New().
		EnvEntries("launcher.env", c.Env).
		Custom(c.MaxConcurrent >= 0, "launcher.max_concurrent", "must not be negative").
		Custom(c.MaxWait >= 0, "launcher.max_wait", "must not be negative").
		Err()
}

// Adapter applies configured defaults to requests before handing them to
// a Launcher.
type Adapter struct {
	config   Config
	launcher *Launcher
	slots    *resilience.Bulkhead
}

// NewAdapter creates a launch adapter. A nil launcher gets one built from
// cfg, with the reaper enabled when cfg.Reap is set.
func NewAdapter(cfg Config, launcher *Launcher, opts ...Option) *Adapter {
	if launcher == nil {
		if cfg.Reap {
			opts = append(opts, WithReaper())
		}
		launcher = NewLauncher(opts...)
	}
	a := &Adapter{config: cfg, launcher: launcher}
	a.slots = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "launcher",
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.MaxWait,
		OnReject: func(name string, err error) {
			launcher.log.Warn("launch rejected", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
		},
	})
	return a
}

// Launch runs req, applying adapter-level defaults.
func (a *Adapter) Launch(ctx context.Context, req Request) (*Result, error) {
	if a.config.Debug {
		req.Debug = true
	}
	if req.Dir == "" {
		req.Dir = a.config.Dir
	}
	if len(a.config.Env) > 0 {
		req.Env = append(append([]string(nil), a.config.Env...), req.Env...)
	}

	res, err := resilience.ExecuteWithResult(a.slots, ctx, func() (*Result, error) {
		return a.launcher.Launch(ctx, req)
	})
	if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
		return nil, apperrors.LauncherBusy(a.slots.MaxConcurrent(), err).WithSpan(req.Span)
	}
	return res, err
}

// CheckHealth reports whether the default working directory is usable.
func (a *Adapter) CheckHealth(_ context.Context) observability.Health {
	h := observability.Health{Name: "launcher", Status: observability.HealthStatusUp}
	if a.slots != nil {
		h.Details = map[string]string{
			"in_use":         strconv.Itoa(a.slots.InUse()),
			"max_concurrent": strconv.Itoa(a.slots.MaxConcurrent()),
		}
		if a.slots.Full() {
			h.Status = observability.HealthStatusDegraded
			h.Message = "all launch slots in use"
		}
	}
	if a.config.Dir == "" {
		return h
	}
	if h.Details == nil {
		h.Details = map[string]string{}
	}
	h.Details["dir"] = a.config.Dir
	info, err := os.Stat(a.config.Dir)
	switch {
	case err != nil:
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	case !info.IsDir():
		h.Status = observability.HealthStatusDown
		h.Message = "not a directory"
	}
	return h
}
