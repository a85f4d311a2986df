// Package errors provides the structured error type shared by the launcher
// and its adapters. Every failure carries a machine-readable code, a short
// label, a detailed message and an optional span locating the offending
// token, plus HTTP status mapping for the launch API.
package errors
