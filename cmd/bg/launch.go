package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/bg/bootstrap"
	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
	"github.com/kbukum/bg/process"
)

// launchFlags are the switches shared by bg and bg run.
type launchFlags struct {
	arguments []string
	debug     bool
	pid       bool
	wait      bool
}

func (lf *launchFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&lf.arguments, "arguments", "a", nil, "Argument passed to the command verbatim (repeatable, placed before trailing args)")
	f.BoolVarP(&lf.debug, "debug", "d", false, "Describe the command on stderr before starting it")
	f.BoolVarP(&lf.pid, "pid", "p", false, "Print the pid of the started process")
	f.BoolVarP(&lf.wait, "wait", "w", false, "Wait for the process and print its stdout")
}

// launch runs one request as a finite task so telemetry is flushed before
// bg exits. The result is rendered only once the task has returned; an
// interrupted capture leaves the child running and prints nothing.
func (c *cli) launch(ctx context.Context, args []string, lf launchFlags) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	adapter := process.NewAdapter(cfg.Launcher, nil,
		process.WithDiagnostics(c.stderr),
		process.WithLogger(app.Logger),
		process.WithMetrics(launchMetrics(app.Logger)),
	)
	if err := app.RegisterComponent(adapter); err != nil {
		return err
	}
	withTelemetry(app, cfg)

	req := buildRequest(c.argv, args, lf)
	var res *process.Result
	err = app.RunTask(ctx, func(ctx context.Context) error {
		var err error
		res, err = adapter.Launch(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	return c.renderResult(res)
}

// buildRequest turns the positional arguments into a launch request. args
// is always a suffix of argv, so the command's position is recoverable.
func buildRequest(argv, args []string, lf launchFlags) process.Request {
	req := process.Request{
		Debug: lf.debug,
		Pid:   lf.pid,
		Mode:  process.ModeFromFlags(lf.pid, lf.wait),
	}
	if len(args) == 0 {
		req.Span = endSpan(argv)
		return req
	}
	req.Binary = args[0]
	req.Args = append(append([]string(nil), lf.arguments...), args[1:]...)
	req.Span = tokenSpan(argv, len(argv)-len(args))
	return req
}

// tokenSpan locates argv[i] within the space-joined invocation.
func tokenSpan(argv []string, i int) apperrors.Span {
	start := 0
	for _, a := range argv[:i] {
		start += len(a) + 1
	}
	return apperrors.Span{Arg: i, Start: start, End: start + len(argv[i])}
}

// endSpan points just past the last token.
func endSpan(argv []string) apperrors.Span {
	n := len(strings.Join(argv, " "))
	return apperrors.Span{Arg: len(argv), Start: n, End: n}
}

// withTelemetry starts the OTLP exporters once the components are up and
// flushes them on shutdown. Disabled observability makes both hooks no-ops.
func withTelemetry(app *bootstrap.App[*Config], cfg *Config) {
	var shutdown observability.ShutdownFunc
	app.OnStart(func(ctx context.Context) error {
		var err error
		shutdown, err = observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version)
		return err
	})
	app.OnStop(func(ctx context.Context) error {
		if shutdown == nil {
			return nil
		}
		return shutdown(ctx)
	})
}

// launchMetrics creates the launch instruments on the global meter. They
// forward to the real provider once telemetry has started.
func launchMetrics(log *logger.Logger) *observability.LaunchMetrics {
	m, err := observability.NewLaunchMetrics(observability.Meter(serviceName))
	if err != nil {
		log.Warn("launch metrics unavailable", logger.ErrorFields("metrics", err))
		return nil
	}
	return m
}
