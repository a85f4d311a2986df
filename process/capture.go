package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
)

// capture starts the child with both output streams piped, drains them
// concurrently until EOF, then waits for exit.
func (l *Launcher) capture(ctx context.Context, cmd *exec.Cmd, req Request, desc string, log *logger.Logger) (*Result, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.CaptureUnavailable("stdout", desc, err).WithSpan(req.Span)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		releasePipe(stdout, cmd.Stdout)
		return nil, apperrors.CaptureUnavailable("stderr", desc, err).WithSpan(req.Span)
	}

	if err := cmd.Start(); err != nil {
		return nil, apperrors.SpawnFailed(desc, err).WithSpan(req.Span)
	}
	pid := cmd.Process.Pid
	log.Debug("process started", logger.Fields(logger.FieldPID, pid))

	// A child blocked writing one stream never closes the other.
	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(drain(&outBuf, stdout, "stdout", desc, req.Span))
	g.Go(drain(&errBuf, stderr, "stderr", desc, req.Span))
	readErr := g.Wait()

	// Wait closes the pipes, so it only runs once both readers are done.
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, readErr
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, apperrors.WaitFailed(desc, waitErr).WithSpan(req.Span)
		}
		exitCode := exitErr.ExitCode()
		observability.SetSpanAttribute(ctx, observability.AttrExitCode, exitCode)
		stderrText := strings.TrimRight(lossyString(errBuf.Bytes()), "\r\n")
		return nil, apperrors.NonZeroExit(desc, exitErr.ProcessState.String(), exitCode, stderrText).WithSpan(req.Span)
	}

	observability.SetSpanAttribute(ctx, observability.AttrExitCode, 0)
	log.Debug("process exited", logger.Fields(logger.FieldPID, pid, logger.FieldExitCode, 0))

	switch {
	case req.Pid:
		return &Result{Kind: ResultPid, Pid: pid}, nil
	case outBuf.Len() == 0:
		return &Result{Kind: ResultEmpty}, nil
	}
	return &Result{Kind: ResultText, Text: lossyString(outBuf.Bytes())}, nil
}

func drain(dst *bytes.Buffer, src io.Reader, stream, desc string, span apperrors.Span) func() error {
	return func() error {
		if _, err := io.Copy(dst, src); err != nil {
			return apperrors.OutputReadFailed(stream, desc, err).WithSpan(span)
		}
		return nil
	}
}

// releasePipe closes both ends of a pipe whose command will never start.
// Start would otherwise be the one to close the child's end.
func releasePipe(r io.Closer, w io.Writer) {
	_ = r.Close()
	if f, ok := w.(*os.File); ok {
		_ = f.Close()
	}
}
