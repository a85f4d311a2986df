// Package bootstrap orchestrates the lifecycle of a bg process: it validates
// the typed configuration, initializes the logger, starts registered
// components in order, runs start/ready/stop hooks, and shuts everything
// down in reverse on SIGINT/SIGTERM.
//
// `bg serve` uses App.Run; one-shot launches use App.RunTask so telemetry
// is flushed by the stop hooks before the CLI exits.
package bootstrap
