package process

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/bg/errors"
)

// Request describes one launch. It is consumed by a single Launch call.
type Request struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are passed to the child verbatim and in order; no shell is involved.
	Args []string
	// Debug writes a description of the command to the diagnostic stream
	// before spawning.
	Debug bool
	// Mode selects the post-spawn behaviour.
	Mode Mode
	// Pid makes a capturing launch return the pid instead of stdout.
	// It is implied by ModeReturnPid.
	Pid bool
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Span locates the command token in the invocation, for diagnostics.
	Span apperrors.Span
}

// Validate checks the request before any OS interaction.
func (r Request) Validate() error {
	if r.Binary == "" {
		return apperrors.NoCommand().WithSpan(r.Span)
	}
	if !r.Mode.Valid() {
		return apperrors.InvalidInput("mode", fmt.Sprintf("unknown mode %d", int(r.Mode))).WithSpan(r.Span)
	}
	return nil
}

// wantsPid reports whether the result should be the child's pid.
func (r Request) wantsPid() bool {
	return r.Mode == ModeReturnPid || r.Pid
}

// Describe renders the command for diagnostics and error messages:
//
//	'ls' with args ["-l", "a b"]
//
// The list is omitted only when Args is nil; an explicit empty list
// renders as "with args []".
func (r Request) Describe() string {
	if r.Args == nil {
		return fmt.Sprintf("'%s'", r.Binary)
	}
	quoted := make([]string, len(r.Args))
	for i, a := range r.Args {
		quoted[i] = strconv.Quote(a)
	}
	return fmt.Sprintf("'%s' with args [%s]", r.Binary, strings.Join(quoted, ", "))
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
