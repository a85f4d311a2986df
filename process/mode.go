package process

import (
	"fmt"
	"strings"
)

// Mode selects what Launch does after the child has been spawned.
type Mode int

const (
	// ModeDetached returns immediately with an empty result.
	ModeDetached Mode = iota
	// ModeReturnPid returns immediately with the child's pid.
	ModeReturnPid
	// ModeCapture waits for exit and returns the captured stdout.
	ModeCapture
)

var modeNames = map[Mode]string{
	ModeDetached:  "detached",
	ModeReturnPid: "pid",
	ModeCapture:   "capture",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a mode name as produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("process: unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("process: invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ModeFromFlags maps the adapter's --pid and --wait switches onto a Mode.
// wait wins: a capturing launch that also wants the pid keeps ModeCapture
// and sets Request.Pid instead.
func ModeFromFlags(pid, wait bool) Mode {
	switch {
	case wait:
		return ModeCapture
	case pid:
		return ModeReturnPid
	default:
		return ModeDetached
	}
}
