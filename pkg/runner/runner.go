// Package runner executes the external programs that steps wrap. Each
// command runs to completion before the caller continues; the context
// kills the child process when the operator interrupts.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/syntax"
)

// Command describes a single subprocess invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory, the current one when empty
	Dir string
	// Env is appended to the inherited environment
	Env []string
}

// Cmd builds a Command
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Argv returns the full argument vector
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a shell-quoted line
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, word := range c.Argv() {
		quoted, err := syntax.Quote(word, syntax.LangBash)
		if err != nil {
			quoted = word
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}

// Runner runs external commands
type Runner interface {
	// Run executes the command with output streamed to the operator
	Run(ctx context.Context, cmd Command) error
	// Output executes a read-only query and returns trimmed stdout. It runs
	// even in dry-run mode.
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger zerolog.Logger
	dryRun bool
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an ExecRunner
type Option func(*ExecRunner)

// WithDryRun logs commands instead of running them
func WithDryRun(dryRun bool) Option {
	return func(r *ExecRunner) { r.dryRun = dryRun }
}

// WithIO overrides the standard streams handed to children
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewExecRunner creates a runner attached to the process streams
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		logger: logging.GetLogger("runner"),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if c.Name == "" {
		return errors.New(errors.ErrInvalidInput, "command requires a program name")
	}

	logging.LogCommand(r.logger, c.Name, c.Args)
	if r.dryRun {
		r.logger.Info().Str("command", c.String()).Msg("Dry run mode - command would be executed")
		return nil
	}

	cmd := r.build(ctx, c)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return r.failure(ctx, c, err, "")
	}
	return nil
}

// Output implements Runner
func (r *ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	if c.Name == "" {
		return "", errors.New(errors.ErrInvalidInput, "command requires a program name")
	}

	logging.LogCommand(r.logger, c.Name, c.Args)
	cmd := r.build(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", r.failure(ctx, c, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func (r *ExecRunner) failure(ctx context.Context, c Command, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrapf(ctxErr, errors.ErrCanceled, "interrupted: %s", c.String()).
			WithDetail("command", c.String())
	}

	wrapped := errors.Wrapf(err, errors.ErrCommandFailed, "command failed: %s", c.String()).
		WithDetail("command", c.String())

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		wrapped.WithDetail("exit_status", exitErr.ExitCode())
	}
	if stderr != "" {
		wrapped.WithDetail("stderr", strings.TrimSpace(stderr))
	}

	r.logger.Debug().
		Err(err).
		Str("command", c.String()).
		Str("stderr", stderr).
		Msg("Command execution failed")
	return wrapped
}

// ExitStatus extracts the exit status recorded on a command failure
func ExitStatus(err error) (int, bool) {
	v, ok := errors.Detail(err, "exit_status")
	if !ok {
		return 0, false
	}
	status, ok := v.(int)
	return status, ok
}
