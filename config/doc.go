// Package config loads layered configuration for bg binaries.
//
// Values come from a config.yml (found under ./cmd/<name>/, ./config/, the
// working directory or the user config directory), then an optional .env
// file, then environment variables prefixed with the upper-cased service
// name. Nested keys are addressed with underscores:
//
//	BG_SERVER_PORT=9090        -> server.port
//	BG_LAUNCHER_DIR=/srv/jobs  -> launcher.dir
//
// Binaries embed ServiceConfig in their own struct and call Load:
//
//	var cfg Config
//	if err := config.Load("bg", &cfg); err != nil { ... }
package config
