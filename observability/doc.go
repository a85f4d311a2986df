// Package observability wires OpenTelemetry tracing and metrics around
// launches and the launch API.
//
// Nothing is exported unless Setup is called with an enabled Config; until
// then the global no-op providers absorb every span and measurement.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "bg", version.GetVersionInfo().Version)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewLaunchMetrics(observability.Meter("bg"))
//	op := observability.NewLaunchOperation("bg", id, "capture", metrics)
//	ctx, span := op.Start(ctx, "make", 1)
//	defer op.End(ctx, span, "", nil)
package observability
