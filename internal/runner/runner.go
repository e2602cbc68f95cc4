package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// Runner executes external tools.
type Runner interface {
	// Run executes name with args in dir and returns trimmed stdout.
	// A non-zero exit or a spawn failure returns a *ProcessError.
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ProcessError is returned when a child process could not be started or exited non-zero.
type ProcessError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	cmdline := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	if e.Stderr == "" {
		return fmt.Sprintf("%s failed: %v", cmdline, e.Err)
	}
	return fmt.Sprintf("%s failed: %v: %s", cmdline, e.Err, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Detail returns the tool's stderr, or the underlying error message when stderr was empty.
func (e *ProcessError) Detail() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Exec runs commands with os/exec.
type Exec struct {
	env     map[string][]string
	log     *clog.Logger
	timeout time.Duration
}

var _ Runner = &Exec{}

// New creates an Exec runner. A zero timeout disables the per-command deadline.
func New(timeout time.Duration) *Exec {
	return &Exec{
		env: map[string][]string{
			"git": {"GIT_TERMINAL_PROMPT=0"},
			"gh":  {"GH_PROMPT_DISABLED=1"},
		},
		log:     clog.Default().WithPrefix("exec"),
		timeout: timeout,
	}
}

func (r *Exec) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	r.log.Debug("Executing command", "cmd", name, "args", args, "workingDir", dir)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.env[name]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.log.Warn("command timed out", "cmd", name, "args", args, "timeout", r.timeout)
			return "", &ProcessError{
				Name: name,
				Args: args,
				Err:  fmt.Errorf("timed out after %s: %w", r.timeout, context.DeadlineExceeded),
			}
		}
		r.log.Debug("command failed", "cmd", name, "args", args, "stderr", stderr.String(), "error", err)
		return "", &ProcessError{
			Name:   name,
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	output := strings.TrimSpace(stdout.String())
	r.log.Debug("command succeeded", "cmd", name, "args", args, "outputLen", len(output))
	return output, nil
}
