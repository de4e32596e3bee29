// Package runner executes test point commands inside a root directory with
// captured, size-capped output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner executes commands within a root directory.
type Runner struct {
	Root      string
	Timeout   time.Duration // zero means the command may run forever
	MaxOutput int           // bytes kept per stream
}

// Run executes argv. The first element is the binary name (resolved via
// PATH), and the rest are arguments. cwd is resolved relative to Root and
// must remain within it.
//
// A command that starts and exits with any status yields a Result. An
// error means the command could not be started at all.
func (r *Runner) Run(ctx context.Context, argv []string, cwd string) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	dir, err := r.resolveDir(cwd)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: r.MaxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: r.MaxOutput}

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: r.MaxOutput > 0 && (stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput),
		Duration:  elapsed,
	}, nil
}

// resolveDir resolves cwd relative to the root and validates it is within
// the root.
func (r *Runner) resolveDir(cwd string) (string, error) {
	if cwd == "" {
		return r.Root, nil
	}

	var dir string
	if filepath.IsAbs(cwd) {
		dir = filepath.Clean(cwd)
	} else {
		dir = filepath.Clean(filepath.Join(r.Root, cwd))
	}

	rel, err := filepath.Rel(r.Root, dir)
	if err != nil {
		return "", fmt.Errorf("resolving cwd: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("cwd %q is outside root %q", cwd, r.Root)
	}
	return dir, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the
// rest. A limit of zero or less keeps everything.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		// Report all bytes as consumed so the copy goroutine does not fail
		// with a short write.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
