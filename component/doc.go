// Package component defines the lifecycle interface shared by the parts of a
// long-running bg process, and a Registry that starts them in order and
// stops them in reverse.
//
// Components that also implement observability.HealthChecker are reported
// by Registry.HealthCheckers.
package component
