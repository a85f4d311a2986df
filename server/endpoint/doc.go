// Package endpoint provides the launch API's operational handlers:
// /health and /version.
package endpoint
