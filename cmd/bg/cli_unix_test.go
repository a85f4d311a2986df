//go:build unix

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kbukum/bg/auth"
	"github.com/kbukum/bg/auth/apikey"
	"github.com/kbukum/bg/auth/jwt"
	apperrors "github.com/kbukum/bg/errors"
)

const quietConfig = `
logging:
  level: disabled
`

// runBG runs bg with a quiet config file prepended to args.
func runBG(t *testing.T, cfg string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	argv := append([]string{"--config", writeConfig(t, cfg)}, args...)
	code := run(context.Background(), argv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLICaptureOutput(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "-w", "printf", "hello")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != "hello" {
		t.Errorf("stdout = %q, want hello", stdout)
	}
}

func TestCLIChildFlagsAreNotParsed(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "-w", "printf", "%s", "-p")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != "-p" {
		t.Errorf("stdout = %q, want -p", stdout)
	}
}

func TestCLIArgumentsFlagPrecedesTrailingArgs(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "-w", "-a", "%s+%s", "printf", "x", "y")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != "x+y" {
		t.Errorf("stdout = %q, want x+y", stdout)
	}
}

func TestCLIArgumentWithSpacesStaysOneToken(t *testing.T) {
	code, stdout, _ := runBG(t, quietConfig, "-w", "sh", "-c", `printf %s "$#"`, "sh", "a b; echo injected")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if stdout != "1" {
		t.Errorf("expected exactly one argument, got %q", stdout)
	}
}

func TestCLIRunSubcommand(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "run", "-w", "printf", "serve")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != "serve" {
		t.Errorf("stdout = %q, want serve", stdout)
	}
}

func TestCLIDetachedPrintsNothing(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "true")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

func TestCLIPid(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "-p", "sleep", "5")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	pid, err := strconv.Atoi(strings.TrimSuffix(stdout, "\n"))
	if err != nil {
		t.Fatalf("stdout %q is not a pid: %v", stdout, err)
	}
	t.Cleanup(func() { _ = unix.Kill(pid, unix.SIGKILL) })
	if err := unix.Kill(pid, 0); err != nil {
		t.Errorf("process %d is not running: %v", pid, err)
	}
}

func TestCLIDebugLine(t *testing.T) {
	code, _, stderr := runBG(t, quietConfig, "-d", "-w", "true", "a b")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stderr, `Starting process 'true' with args ["a b"]`) {
		t.Errorf("expected debug line, got %q", stderr)
	}
}

func TestCLIInterruptAbandonsCapture(t *testing.T) {
	// Keep the test binary alive if a signal lands before bg listens for it.
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, unix.SIGINT)
	defer signal.Stop(guard)

	type outcome struct {
		code           int
		stdout, stderr string
	}
	done := make(chan outcome, 1)
	cfgPath := writeConfig(t, quietConfig)
	begin := time.Now()
	go func() {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"--config", cfgPath, "-w", "sleep", "5"}, &stdout, &stderr)
		done <- outcome{code, stdout.String(), stderr.String()}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(4 * time.Second)
	for {
		select {
		case out := <-done:
			if elapsed := time.Since(begin); elapsed > 3*time.Second {
				t.Errorf("bg waited %s for the child after SIGINT", elapsed)
			}
			if out.code != exitInterrupted {
				t.Errorf("exit %d, want %d (stderr %q)", out.code, exitInterrupted, out.stderr)
			}
			if out.stdout != "" {
				t.Errorf("stdout should stay empty, got %q", out.stdout)
			}
			if !strings.Contains(out.stderr, "interrupted") {
				t.Errorf("expected interruption in %q", out.stderr)
			}
			return
		case <-ticker.C:
			if time.Since(begin) > 200*time.Millisecond {
				_ = unix.Kill(os.Getpid(), unix.SIGINT)
			}
		case <-deadline:
			t.Fatal("bg did not return after SIGINT")
		}
	}
}

func TestCLIErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "non-zero exit carries stderr",
			args: []string{"-w", "sh", "-c", "echo boom >&2; exit 3"},
			want: []string{"Error: Process did not exit successfully", "boom", "--> argv[4]: sh"},
		},
		{
			name: "spawn failure names the command",
			args: []string{"bg-does-not-exist", "a"},
			want: []string{"Error: Could not start process", "'bg-does-not-exist' with args [\"a\"]", "--> argv[3]: bg-does-not-exist"},
		},
		{
			name: "missing command",
			args: []string{"-p"},
			want: []string{"Error: No command given", "--> argv[4]: <missing command>"},
		},
		{
			name: "unknown output format",
			args: []string{"-o", "yaml", "true"},
			want: []string{"Error: --output must be"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := runBG(t, quietConfig, tc.args...)
			if code != 1 {
				t.Errorf("exit %d, want 1", code)
			}
			if stdout != "" {
				t.Errorf("stdout should stay empty on failure, got %q", stdout)
			}
			for _, w := range tc.want {
				if !strings.Contains(stderr, w) {
					t.Errorf("expected %q in %q", w, stderr)
				}
			}
		})
	}
}

func TestCLIJSONOutput(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "-o", "json", "-w", "printf", "hi")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	var res struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if res.Kind != "text" || res.Text != "hi" || res.ID == "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCLIJSONError(t *testing.T) {
	code, _, stderr := runBG(t, quietConfig, "-o", "json", "-w", "false")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal([]byte(stderr), &resp); err != nil {
		t.Fatalf("decode %q: %v", stderr, err)
	}
	if resp.Error.Code != apperrors.ErrCodeNonZeroExit {
		t.Errorf("code = %s, want NON_ZERO_EXIT", resp.Error.Code)
	}
}

func TestCLILauncherConfig(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := quietConfig + `
launcher:
  dir: ` + dir + `
  env: ["BG_TEST_VALUE=from-config"]
`
	code, stdout, stderr := runBG(t, cfg, "-w", "sh", "-c", `printf '%s:%s' "$(pwd -P)" "$BG_TEST_VALUE"`)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	if stdout != dir+":from-config" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCLIMissingLauncherDir(t *testing.T) {
	cfg := quietConfig + `
launcher:
  dir: /definitely/not/here
`
	code, _, stderr := runBG(t, cfg, "true")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(stderr, "launcher.dir") {
		t.Errorf("expected launcher.dir in %q", stderr)
	}
}

func TestCLIVersion(t *testing.T) {
	code, stdout, _ := runBG(t, quietConfig, "version")
	if code != 0 || strings.TrimSpace(stdout) == "" {
		t.Fatalf("exit %d, stdout %q", code, stdout)
	}
}

func TestCLIHashKey(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "hash-key", "s3cret")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	hash := strings.TrimSpace(stdout)
	if err := apikey.NewHasher().Verify("s3cret", hash); err != nil {
		t.Errorf("printed hash does not verify: %v", err)
	}
}

func TestCLIHashKeyGenerate(t *testing.T) {
	code, stdout, stderr := runBG(t, quietConfig, "hash-key", "--generate")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected key and hash lines, got %q", stdout)
	}
	key := strings.TrimSpace(strings.TrimPrefix(lines[0], "key:"))
	hash := strings.TrimSpace(strings.TrimPrefix(lines[1], "hash:"))
	if len(key) != 64 {
		t.Errorf("expected 32 hex-encoded bytes, got %q", key)
	}
	if err := apikey.NewHasher().Verify(key, hash); err != nil {
		t.Errorf("generated hash does not verify: %v", err)
	}
}

func TestCLIToken(t *testing.T) {
	secret := strings.Repeat("k", 32)
	cfg := quietConfig + `
server:
  auth:
    jwt:
      secret: ` + secret + `
`
	code, stdout, stderr := runBG(t, cfg, "token", "--subject", "ci")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}

	svc, err := auth.NewTokenService(&jwt.Config{Secret: secret})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	claims, err := svc.Parse(strings.TrimSpace(stdout))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "ci" || !claims.HasScope(auth.ScopeLaunch) {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestCLITokenRequiresSecretAndSubject(t *testing.T) {
	if code, _, stderr := runBG(t, quietConfig, "token"); code != 1 || !strings.Contains(stderr, "--subject") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
	if code, _, stderr := runBG(t, quietConfig, "token", "--subject", "ci"); code != 1 || !strings.Contains(stderr, "secret") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestCLIServeRejectsPublicHostWithoutAuth(t *testing.T) {
	cfg := quietConfig + `
server:
  host: 0.0.0.0
`
	code, _, stderr := runBG(t, cfg, "serve")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(stderr, "auth requires") {
		t.Errorf("expected auth error, got %q", stderr)
	}
}
