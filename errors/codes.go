package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Launch errors
const (
	// ErrCodeNoCommand indicates an empty command was given to the launcher.
	ErrCodeNoCommand ErrorCode = "NO_COMMAND"
	// ErrCodeSpawnFailed indicates the OS refused to create the process.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrCodeStdoutCaptureUnavailable indicates no readable stdout pipe could be obtained.
	ErrCodeStdoutCaptureUnavailable ErrorCode = "STDOUT_CAPTURE_UNAVAILABLE"
	// ErrCodeStderrCaptureUnavailable indicates no readable stderr pipe could be obtained.
	ErrCodeStderrCaptureUnavailable ErrorCode = "STDERR_CAPTURE_UNAVAILABLE"
	// ErrCodeOutputReadFailed indicates a capture pipe failed mid-read.
	ErrCodeOutputReadFailed ErrorCode = "OUTPUT_READ_FAILED"
	// ErrCodeWaitFailed indicates the exit status of a captured process could not be collected.
	ErrCodeWaitFailed ErrorCode = "WAIT_FAILED"
	// ErrCodeNonZeroExit indicates a captured process exited unsuccessfully.
	ErrCodeNonZeroExit ErrorCode = "NON_ZERO_EXIT"
)

// Adapter errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimited indicates the caller exceeded its launch budget.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeLauncherBusy indicates every launch slot is taken.
	ErrCodeLauncherBusy ErrorCode = "LAUNCHER_BUSY"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeNoCommand:                http.StatusBadRequest,
	ErrCodeSpawnFailed:              http.StatusUnprocessableEntity,
	ErrCodeStdoutCaptureUnavailable: http.StatusInternalServerError,
	ErrCodeStderrCaptureUnavailable: http.StatusInternalServerError,
	ErrCodeOutputReadFailed:         http.StatusInternalServerError,
	ErrCodeWaitFailed:               http.StatusInternalServerError,
	ErrCodeNonZeroExit:              http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:             http.StatusBadRequest,
	ErrCodeUnauthorized:             http.StatusUnauthorized,
	ErrCodeRateLimited:              http.StatusTooManyRequests,
	ErrCodeLauncherBusy:             http.StatusServiceUnavailable,
	ErrCodeInternal:                 http.StatusInternalServerError,
}

// HTTPStatusForCode returns the recommended HTTP status for a code.
// Unknown codes map to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsLaunchCode reports whether code was produced by the process launcher
// rather than by an adapter.
func IsLaunchCode(code ErrorCode) bool {
	switch code {
	case ErrCodeNoCommand, ErrCodeSpawnFailed,
		ErrCodeStdoutCaptureUnavailable, ErrCodeStderrCaptureUnavailable,
		ErrCodeOutputReadFailed, ErrCodeWaitFailed, ErrCodeNonZeroExit:
		return true
	}
	return false
}
