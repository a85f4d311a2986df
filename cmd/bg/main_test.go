package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/process"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		args     []string
		flags    launchFlags
		wantBin  string
		wantArgs []string
		wantMode process.Mode
		wantSpan apperrors.Span
	}{
		{
			name:     "detached",
			argv:     []string{"bg", "sleep", "5"},
			args:     []string{"sleep", "5"},
			wantBin:  "sleep",
			wantArgs: []string{"5"},
			wantMode: process.ModeDetached,
			wantSpan: apperrors.Span{Arg: 1, Start: 3, End: 8},
		},
		{
			name:     "pid after flag",
			argv:     []string{"bg", "-p", "sleep", "5"},
			args:     []string{"sleep", "5"},
			flags:    launchFlags{pid: true},
			wantBin:  "sleep",
			wantArgs: []string{"5"},
			wantMode: process.ModeReturnPid,
			wantSpan: apperrors.Span{Arg: 2, Start: 6, End: 11},
		},
		{
			name:     "flag arguments come first",
			argv:     []string{"bg", "-w", "-a", "x", "printf", "y"},
			args:     []string{"printf", "y"},
			flags:    launchFlags{wait: true, arguments: []string{"x"}},
			wantBin:  "printf",
			wantArgs: []string{"x", "y"},
			wantMode: process.ModeCapture,
			wantSpan: apperrors.Span{Arg: 4, Start: 11, End: 17},
		},
		{
			name:     "missing command points past the end",
			argv:     []string{"bg", "-p"},
			args:     nil,
			flags:    launchFlags{pid: true},
			wantMode: process.ModeReturnPid,
			wantSpan: apperrors.Span{Arg: 2, Start: 5, End: 5},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := buildRequest(tc.argv, tc.args, tc.flags)
			if req.Binary != tc.wantBin {
				t.Errorf("Binary = %q, want %q", req.Binary, tc.wantBin)
			}
			if !slices.Equal(req.Args, tc.wantArgs) {
				t.Errorf("Args = %q, want %q", req.Args, tc.wantArgs)
			}
			if req.Mode != tc.wantMode {
				t.Errorf("Mode = %s, want %s", req.Mode, tc.wantMode)
			}
			if req.Span != tc.wantSpan {
				t.Errorf("Span = %+v, want %+v", req.Span, tc.wantSpan)
			}
		})
	}
}

func TestBuildRequestDoesNotAliasFlagArguments(t *testing.T) {
	lf := launchFlags{arguments: make([]string, 1, 4)}
	lf.arguments[0] = "a"
	req := buildRequest([]string{"bg", "x", "b"}, []string{"x", "b"}, lf)
	req.Args[0] = "changed"
	if lf.arguments[0] != "a" {
		t.Error("request args must not share storage with the flag slice")
	}
}

func TestBuildRequestPidWithWait(t *testing.T) {
	req := buildRequest([]string{"bg", "x"}, []string{"x"}, launchFlags{pid: true, wait: true})
	if req.Mode != process.ModeCapture || !req.Pid {
		t.Errorf("expected capture with pid, got mode %s pid %v", req.Mode, req.Pid)
	}
}

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{outputText, outputJSON} {
		if err := validateOutput(f); err != nil {
			t.Errorf("validateOutput(%q) = %v", f, err)
		}
	}
	if err := validateOutput("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func newTestCLI(output string, argv ...string) (*cli, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &cli{stdout: &stdout, stderr: &stderr, argv: argv, output: output}, &stdout, &stderr
}

func TestRenderResultText(t *testing.T) {
	tests := []struct {
		name string
		res  *process.Result
		want string
	}{
		{"empty", &process.Result{Kind: process.ResultEmpty}, ""},
		{"pid", &process.Result{Kind: process.ResultPid, Pid: 4242}, "4242\n"},
		{"text verbatim", &process.Result{Kind: process.ResultText, Text: "a\nb"}, "a\nb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, stdout, _ := newTestCLI(outputText)
			if err := c.renderResult(tc.res); err != nil {
				t.Fatalf("renderResult: %v", err)
			}
			if stdout.String() != tc.want {
				t.Errorf("got %q, want %q", stdout.String(), tc.want)
			}
		})
	}
}

func TestRenderResultJSON(t *testing.T) {
	c, stdout, _ := newTestCLI(outputJSON)
	if err := c.renderResult(&process.Result{ID: "id-1", Kind: process.ResultPid, Pid: 7}); err != nil {
		t.Fatalf("renderResult: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", stdout.String(), err)
	}
	if got["kind"] != "pid" || got["pid"] != float64(7) || got["id"] != "id-1" {
		t.Errorf("unexpected JSON: %v", got)
	}
	if _, ok := got["text"]; ok {
		t.Error("text should be omitted for a pid result")
	}
}

func TestRenderErrorText(t *testing.T) {
	c, _, stderr := newTestCLI(outputText, "bg", "-w", "nope", "a")
	err := apperrors.SpawnFailed(`'nope' with args ["a"]`, errors.New("not found")).
		WithSpan(apperrors.Span{Arg: 2, Start: 6, End: 10})
	c.renderError(err)

	out := stderr.String()
	for _, want := range []string{
		"Error: Could not start process\n",
		`  Could not start process 'nope' with args ["a"]: not found` + "\n",
		"  --> argv[2]: nope\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestRenderErrorMissingCommand(t *testing.T) {
	c, _, stderr := newTestCLI(outputText, "bg", "-p")
	c.renderError(apperrors.NoCommand().WithSpan(apperrors.Span{Arg: 2, Start: 5, End: 5}))
	if !strings.Contains(stderr.String(), "--> argv[2]: <missing command>") {
		t.Errorf("unexpected output %q", stderr.String())
	}
}

func TestRenderErrorWithoutSpan(t *testing.T) {
	c, _, stderr := newTestCLI(outputText, "bg")
	c.renderError(apperrors.Internal(errors.New("x")))
	if strings.Contains(stderr.String(), "-->") {
		t.Errorf("zero span should not be rendered, got %q", stderr.String())
	}
}

func TestRenderErrorPlain(t *testing.T) {
	c, _, stderr := newTestCLI(outputText, "bg")
	c.renderError(errors.New("unknown flag: --nope"))
	if stderr.String() != "Error: unknown flag: --nope\n" {
		t.Errorf("unexpected output %q", stderr.String())
	}
}

func TestRenderErrorJSON(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"launch error", apperrors.NonZeroExit("'false'", "exit status 1", 1, ""), apperrors.ErrCodeNonZeroExit},
		{"plain error", errors.New("bad flag"), apperrors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _, stderr := newTestCLI(outputJSON, "bg")
			c.renderError(tc.err)
			var resp apperrors.ErrorResponse
			if err := json.Unmarshal(stderr.Bytes(), &resp); err != nil {
				t.Fatalf("decode %q: %v", stderr.String(), err)
			}
			if resp.Error.Code != tc.code {
				t.Errorf("code = %s, want %s", resp.Error.Code, tc.code)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: disabled
launcher:
  dir: /tmp
`)
	t.Setenv("BG_LAUNCHER_DEBUG", "true")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Name != "bg" {
		t.Errorf("Name = %q, want bg", cfg.Name)
	}
	if cfg.Version == "" {
		t.Error("expected version default")
	}
	if cfg.Launcher.Dir != "/tmp" {
		t.Errorf("Launcher.Dir = %q", cfg.Launcher.Dir)
	}
	if !cfg.Launcher.Debug {
		t.Error("expected BG_LAUNCHER_DEBUG to override the file")
	}
	if cfg.Observability.Environment != "production" {
		t.Errorf("observability environment = %q, want production", cfg.Observability.Environment)
	}
	if cfg.Server.Port != 7411 {
		t.Errorf("server port = %d, want 7411", cfg.Server.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestConfigValidateSkipsServer(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("launch config should not depend on server auth: %v", err)
	}
	if err := cfg.Server.Validate(); err == nil {
		t.Fatal("expected server validation to reject a public host without auth")
	}
}
