package main

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/process"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("--output must be %q or %q (got: %q)", outputText, outputJSON, format)
	}
}

// renderResult writes a launch result to stdout. In text mode an empty
// result prints nothing, a pid prints as a decimal line and captured text
// is written verbatim.
func (c *cli) renderResult(res *process.Result) error {
	if c.output == outputJSON {
		return writeJSON(c.stdout, res)
	}
	var err error
	switch res.Kind {
	case process.ResultPid:
		_, err = fmt.Fprintf(c.stdout, "%d\n", res.Pid)
	case process.ResultText:
		_, err = io.WriteString(c.stdout, res.Text)
	}
	return err
}

// renderError writes err to stderr:
//
//	Error: Could not start process
//	  Could not start process 'nope': exec: "nope": executable file not found in $PATH
//	  --> argv[1]: nope
func (c *cli) renderError(err error) {
	appErr, ok := apperrors.AsAppError(err)
	if c.output == outputJSON {
		if !ok {
			appErr = apperrors.New(apperrors.ErrCodeInvalidInput, "Invalid invocation", err.Error())
		}
		_ = writeJSON(c.stderr, appErr.ToResponse())
		return
	}
	if !ok {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(c.stderr, "Error: %s\n", appErr.Label)
	if appErr.Message != "" {
		fmt.Fprintf(c.stderr, "  %s\n", appErr.Message)
	}
	if loc := c.location(appErr.Span); loc != "" {
		fmt.Fprintf(c.stderr, "  --> %s\n", loc)
	}
}

// location describes the token a span points at. A zero span covers the
// whole invocation and is not rendered.
func (c *cli) location(span apperrors.Span) string {
	switch {
	case span.IsZero():
		return ""
	case span.Arg < len(c.argv):
		return fmt.Sprintf("argv[%d]: %s", span.Arg, c.argv[span.Arg])
	default:
		return fmt.Sprintf("argv[%d]: <missing command>", span.Arg)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
