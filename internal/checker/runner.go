// Package checker runs the external proof checker and decodes its reports.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"nuprlnav/internal/trace"
)

// DefaultBinary is the checker looked up on PATH when none is configured.
const DefaultBinary = "nuprl"

// DefaultTimeout bounds one checker run.
const DefaultTimeout = 30 * time.Second

// Runner is the checker as the session sees it.
type Runner interface {
	Check(ctx context.Context, req CheckRequest) (*CheckOutput, error)
	Reduce(ctx context.Context, req ReduceRequest) (*ReduceOutput, error)
}

// CheckRequest asks for a full check of Text, resolving imports from WorkDir.
type CheckRequest struct {
	WorkDir string
	Path    string // document path, for traces and caching
	Text    string
}

// ReduceRequest asks to evaluate Expr. A nil MaxSteps reduces to normal form.
type ReduceRequest struct {
	Expr     string
	MaxSteps *int
	WorkDir  string // optional library location
	File     string // optional file whose definitions are in scope; needs WorkDir
}

// Args returns the checker arguments for the request.
func (r ReduceRequest) Args() []string {
	args := []string{"reduce"}
	if r.MaxSteps != nil {
		args = append(args, "-s", strconv.Itoa(*r.MaxSteps))
	}
	if r.WorkDir != "" {
		args = append(args, "-l", r.WorkDir)
		if r.File != "" {
			args = append(args, "-f", r.File)
		}
	}
	return args
}

// ProcessRunner runs the checker as a subprocess with the input on stdin.
type ProcessRunner struct {
	Binary  string
	Args    []string // prepended to every invocation
	Timeout time.Duration
}

// NewProcessRunner fills in defaults for empty fields.
func NewProcessRunner(binary string, timeout time.Duration, args ...string) *ProcessRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ProcessRunner{Binary: binary, Args: args, Timeout: timeout}
}

// Check runs "check <workDir>".
func (r *ProcessRunner) Check(ctx context.Context, req CheckRequest) (*CheckOutput, error) {
	ctx, span := trace.Start(ctx, trace.ScopeCheck, "checker.check")
	span.WithExtra("path", req.Path)
	stdout, runErr := r.run(ctx, "check", []string{"check", req.WorkDir}, req.Text)
	out, err := settle(stdout, runErr, DecodeCheckOutput)
	span.Fail(err).End(fmt.Sprintf("%d bytes", len(stdout)))
	return out, err
}

// Reduce runs "reduce [-s n] [-l dir [-f file]]".
func (r *ProcessRunner) Reduce(ctx context.Context, req ReduceRequest) (*ReduceOutput, error) {
	ctx, span := trace.Start(ctx, trace.ScopeCheck, "checker.reduce")
	stdout, runErr := r.run(ctx, "reduce", req.Args(), req.Expr)
	out, err := settle(stdout, runErr, DecodeReduceOutput)
	span.Fail(err).End("")
	return out, err
}

// settle applies the exit policy: a decodable report wins over the exit
// status, since the checker exits non-zero whenever it reports errors.
func settle[T any](stdout []byte, runErr error, decode func([]byte) (T, error)) (T, error) {
	var zero T
	var pe *ProcessError
	if errors.As(runErr, &pe) && pe.ExitCode < 0 {
		return zero, runErr
	}
	out, err := decode(stdout)
	if err == nil {
		return out, nil
	}
	if runErr != nil {
		return zero, runErr
	}
	return zero, err
}

// run returns stdout and a *ProcessError for anything but a clean exit.
func (r *ProcessRunner) run(ctx context.Context, op string, args []string, stdin string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	full := append(append([]string(nil), r.Args...), args...)
	// #nosec G204 -- the checker binary comes from user configuration
	cmd := exec.CommandContext(ctx, r.Binary, full...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// grandchildren holding stdout open must not outlive the timeout
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.Bytes(), &ProcessError{Op: op, Err: ctxErr, ExitCode: -1, Stderr: stderr.String()}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ProcessError{Op: op, Err: err, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return nil, &ProcessError{Op: op, Err: err, ExitCode: -1, Stderr: stderr.String()}
}
