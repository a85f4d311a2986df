// Package logger provides structured logging on top of zerolog.
//
// Output defaults to stderr: bg reserves stdout for launch results, so
// nothing logged here can corrupt a captured pid or command output.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("launcher")
//	log.Debug("process started", logger.Fields(logger.FieldPID, 4242))
package logger
