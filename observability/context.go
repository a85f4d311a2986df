package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation status values recorded on spans and metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// LaunchOperation tracks one launch from spawn to result: its span, its
// start time and the metrics it reports into.
type LaunchOperation struct {
	ServiceName string
	LaunchID    string
	Mode        string
	StartTime   time.Time
	Metrics     *LaunchMetrics
}

// NewLaunchOperation creates a launch operation.
// If metrics is nil, metric recording is silently skipped.
func NewLaunchOperation(serviceName, launchID, mode string, metrics *LaunchMetrics) *LaunchOperation {
	return &LaunchOperation{
		ServiceName: serviceName,
		LaunchID:    launchID,
		Mode:        mode,
		StartTime:   time.Now(),
		Metrics:     metrics,
	}
}

type launchOperationKey struct{}

// WithLaunchOperation stores a LaunchOperation in the context.
func WithLaunchOperation(ctx context.Context, op *LaunchOperation) context.Context {
	return context.WithValue(ctx, launchOperationKey{}, op)
}

// LaunchOperationFromContext retrieves the LaunchOperation from context, or nil.
func LaunchOperationFromContext(ctx context.Context) *LaunchOperation {
	if op, ok := ctx.Value(launchOperationKey{}).(*LaunchOperation); ok {
		return op
	}
	return nil
}

// Start opens the launch span and records the launch as in progress.
func (op *LaunchOperation) Start(ctx context.Context, command string, argCount int) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanLaunch)
	span.SetAttributes(
		attribute.String(AttrServiceName, op.ServiceName),
		attribute.String(AttrLaunchID, op.LaunchID),
		attribute.String(AttrMode, op.Mode),
		attribute.String(AttrCommand, command),
		attribute.Int(AttrArgCount, argCount),
	)
	op.Metrics.RecordLaunchStart(ctx)
	return WithLaunchOperation(ctx, op), span
}

// End closes the span and records the outcome. code is the error code of
// a failed launch and is ignored when err is nil.
func (op *LaunchOperation) End(ctx context.Context, span trace.Span, code string, err error) {
	duration := op.Duration()
	status := StatusOK

	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String(AttrErrorMessage, err.Error()),
			attribute.String(AttrErrorCode, code),
		)
		op.Metrics.RecordError(ctx, code)
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	op.Metrics.RecordLaunchEnd(ctx, op.Mode, status, duration)
}

// Duration returns the elapsed time since the launch started.
func (op *LaunchOperation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
