// Package server exposes the launcher over HTTP using Gin with HTTP/2
// cleartext (h2c) support, or over TLS (optionally mutual) when
// server.tls is configured; see package security.
//
// # Routes
//
//   - POST /v1/launch: run a launch; body {"command","arguments","debug","pid","wait","dir","env"}
//   - GET /health: launcher health via observability.CheckAll
//   - GET /version: build version information
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request logging and request metrics
//   - Auth: Bearer token or X-Api-Key on /v1
//   - RateLimit: per-caller sliding window on /v1
//
// Detached children started through the API are reaped in the background;
// see process.WithReaper.
package server
