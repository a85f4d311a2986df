package process

import "errors"

// ErrDetachUnsupported is returned by detachProcessGroup on platforms
// without a process-group primitive. Launch proceeds without detaching.
var ErrDetachUnsupported = errors.New("process: process group detachment not supported on this platform")
