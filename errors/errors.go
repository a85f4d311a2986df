package errors

import (
	"fmt"
)

// Span anchors an error to a token of the invocation that caused it.
// For the CLI, Arg is the index into argv; Start/End are byte offsets into
// the space-joined invocation. A zero Span means "the whole invocation".
type Span struct {
	Arg   int `json:"arg"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s == Span{}
}

// AppError is the unified error type. Launch failures carry a launch code,
// a short Label for headings and a detailed Message for humans.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Label is a short human-readable heading ("Could not start process").
	Label string `json:"label"`
	// Message is the detailed human-readable message. Not a stable contract.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Span locates the offending token of the invocation.
	Span Span `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so errors.Is(err, errors.New(code, "", ""))
// works as a kind check.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithSpan anchors the error and returns the receiver.
func (e *AppError) WithSpan(span Span) *AppError {
	e.Span = span
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError, deriving the HTTP status from the code.
func New(code ErrorCode, label, message string) *AppError {
	return &AppError{
		Code:       code,
		Label:      label,
		Message:    message,
		HTTPStatus: HTTPStatusForCode(code),
	}
}

// --- Launch error constructors ---

// NoCommand creates the error for an empty command.
func NoCommand() *AppError {
	return New(ErrCodeNoCommand, "No command given", "A command to start is required.")
}

// SpawnFailed creates the error for a process the OS refused to create.
// desc is the launcher's description of the command and its arguments.
func SpawnFailed(desc string, cause error) *AppError {
	return New(ErrCodeSpawnFailed, "Could not start process",
		fmt.Sprintf("Could not start process %s: %v", desc, cause)).WithCause(cause)
}

// CaptureUnavailable creates the error for a missing stdout or stderr pipe.
// stream is "stdout" or "stderr".
func CaptureUnavailable(stream, desc string, cause error) *AppError {
	code := ErrCodeStdoutCaptureUnavailable
	if stream == "stderr" {
		code = ErrCodeStderrCaptureUnavailable
	}
	msg := fmt.Sprintf("Could not capture %s of process %s", stream, desc)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return New(code, "Could not capture "+stream+" of process", msg).WithCause(cause)
}

// OutputReadFailed creates the error for a capture pipe that failed mid-read.
func OutputReadFailed(stream, desc string, cause error) *AppError {
	return New(ErrCodeOutputReadFailed, "Could not read "+stream+" of process",
		fmt.Sprintf("Could not read %s of process %s. Error: %v", stream, desc, cause)).WithCause(cause)
}

// WaitFailed creates the error for a captured process whose exit could not be collected.
func WaitFailed(desc string, cause error) *AppError {
	return New(ErrCodeWaitFailed, "Could not wait for process",
		fmt.Sprintf("Could not wait for process %s. Error: %v", desc, cause)).WithCause(cause)
}

// NonZeroExit creates the error for a captured process that exited unsuccessfully.
// stderr, when non-empty, is appended to the message.
func NonZeroExit(desc, status string, exitCode int, stderr string) *AppError {
	msg := fmt.Sprintf("Process %s did not exit successfully. Exit code: %s", desc, status)
	if stderr != "" {
		msg = fmt.Sprintf("%s. Error: %s", msg, stderr)
	}
	return New(ErrCodeNonZeroExit, "Process did not exit successfully", msg).
		WithDetail("exit_code", exitCode)
}

// --- Adapter error constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input", fmt.Sprintf("Invalid input: %s", reason))
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, "Invalid input", message)
}

// Unauthorized creates a new AppError for unauthorized access.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, "Unauthorized", reason)
}

// RateLimited creates a new AppError for a caller over its request budget.
func RateLimited(limit int) *AppError {
	return New(ErrCodeRateLimited, "Rate limit exceeded",
		fmt.Sprintf("At most %d launches per minute are allowed.", limit)).WithDetail("limit", limit)
}

// LauncherBusy creates a new AppError for a launch rejected because
// maxConcurrent launches are already in flight.
func LauncherBusy(maxConcurrent int, cause error) *AppError {
	return New(ErrCodeLauncherBusy, "Launcher busy",
		fmt.Sprintf("All %d launch slots are in use; try again later.", maxConcurrent)).
		WithDetail("max_concurrent", maxConcurrent).WithCause(cause)
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "Internal error",
		"An unexpected error occurred.").WithCause(cause)
}
