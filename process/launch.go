package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
)

const serviceName = "bg"

// Launcher spawns Requests. The zero value is not usable; use NewLauncher.
type Launcher struct {
	diag    io.Writer
	log     *logger.Logger
	metrics *observability.LaunchMetrics
	reap    bool
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithDiagnostics sets where debug descriptions are written. Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(l *Launcher) { l.diag = w }
}

// WithLogger sets the logger. Defaults to the one registered as "launcher".
func WithLogger(log *logger.Logger) Option {
	return func(l *Launcher) { l.log = log }
}

// WithMetrics records every launch into m.
func WithMetrics(m *observability.LaunchMetrics) Option {
	return func(l *Launcher) { l.metrics = m }
}

// WithReaper makes detached and pid launches wait for their child in a
// background goroutine so it does not linger as a zombie. Only useful in
// long-lived hosts; a CLI exits before its children anyway.
func WithReaper() Option {
	return func(l *Launcher) { l.reap = true }
}

// NewLauncher creates a Launcher.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{diag: os.Stderr}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get("launcher")
	} else {
		l.log = l.log.WithComponent("launcher")
	}
	return l
}

// Launch spawns a child for req and returns according to req.Mode.
// ctx carries trace context only; the child outlives it.
func Launch(ctx context.Context, req Request) (*Result, error) {
	return NewLauncher().Launch(ctx, req)
}

// Launch spawns a child for req and returns according to req.Mode.
// ctx carries trace context only; cancelling it neither kills the child
// nor interrupts a capture in progress.
func (l *Launcher) Launch(ctx context.Context, req Request) (*Result, error) {
	id := uuid.NewString()
	op := observability.NewLaunchOperation(serviceName, id, req.Mode.String(), l.metrics)
	ctx, span := op.Start(ctx, req.Binary, len(req.Args))

	log := l.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldLaunchID, id,
		logger.FieldCommand, req.Binary,
		logger.FieldMode, req.Mode.String(),
	))

	res, err := l.launch(ctx, req, log)
	if err != nil {
		code := string(apperrors.ErrCodeInternal)
		if appErr, ok := apperrors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		log.Warn("launch failed", logger.Fields(logger.FieldErrorCode, code, logger.FieldError, err.Error()))
		op.End(ctx, span, code, err)
		return nil, err
	}

	res.ID = id
	res.Duration = op.Duration()
	if res.Kind == ResultPid {
		observability.SetSpanAttribute(ctx, observability.AttrPID, res.Pid)
	}
	op.End(ctx, span, "", nil)
	return res, nil
}

func (l *Launcher) launch(ctx context.Context, req Request, log *logger.Logger) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	desc := req.Describe()
	if req.Debug {
		fmt.Fprintf(l.diag, "Starting process %s\n", desc)
	}

	cmd := exec.Command(req.Binary, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = mergeEnv(req.Env)
	if err := detachProcessGroup(cmd); err != nil {
		log.Debug("process group detach unavailable", logger.ErrorFields("detach", err))
	}

	if req.Mode == ModeCapture {
		return l.capture(ctx, cmd, req, desc, log)
	}
	return l.spawn(cmd, req, desc, log)
}

// spawn starts the child and returns without waiting on it.
func (l *Launcher) spawn(cmd *exec.Cmd, req Request, desc string, log *logger.Logger) (*Result, error) {
	if err := cmd.Start(); err != nil {
		return nil, apperrors.SpawnFailed(desc, err).WithSpan(req.Span)
	}
	pid := cmd.Process.Pid
	log.Debug("process started", logger.Fields(logger.FieldPID, pid))

	if l.reap {
		go func() {
			start := time.Now()
			_ = cmd.Wait()
			log.Debug("process reaped", logger.MergeWithDuration(
				logger.Fields(logger.FieldPID, pid, logger.FieldExitCode, cmd.ProcessState.ExitCode()),
				time.Since(start),
			))
		}()
	} else {
		_ = cmd.Process.Release()
	}

	if req.wantsPid() {
		return &Result{Kind: ResultPid, Pid: pid}, nil
	}
	return &Result{Kind: ResultEmpty}, nil
}
