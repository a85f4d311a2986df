package process

import (
	"fmt"
	"strings"
	"time"
)

// ResultKind says which value a successful launch produced.
type ResultKind int

const (
	// ResultEmpty carries no value.
	ResultEmpty ResultKind = iota
	// ResultPid carries the child's process id.
	ResultPid
	// ResultText carries the child's captured stdout.
	ResultText
)

func (k ResultKind) String() string {
	switch k {
	case ResultEmpty:
		return "empty"
	case ResultPid:
		return "pid"
	case ResultText:
		return "text"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is the outcome of a successful launch. Exactly one of Pid or Text
// is meaningful, as selected by Kind.
type Result struct {
	// ID identifies this launch in logs and traces.
	ID string `json:"id"`
	// Kind selects the value carried by the result.
	Kind ResultKind `json:"kind"`
	// Pid is set when Kind is ResultPid.
	Pid int `json:"pid,omitempty"`
	// Text is set when Kind is ResultText.
	Text string `json:"text,omitempty"`
	// Duration is how long Launch took, including the wait in capture mode.
	Duration time.Duration `json:"-"`
}

// Value returns the result in its native form: nil, the pid as int, or the
// text as string.
func (r *Result) Value() any {
	switch r.Kind {
	case ResultPid:
		return r.Pid
	case ResultText:
		return r.Text
	default:
		return nil
	}
}

// lossyString decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
