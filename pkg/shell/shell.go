// Package shell runs external commands with bounded lifetimes and a uniform
// error contract: a non-zero exit becomes an errors.SubprocessError carrying
// the captured stderr, and an expired deadline becomes an errors.TimeoutError
// after the child has been killed.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

// Command is a fully resolved invocation. Stdin may carry a secret and is
// never rendered by String.
type Command struct {
	Name  string
	Args  []string
	Stdin []byte
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Argv returns name followed by args.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout followed by stderr, the equivalent of 2>&1.
func (r Result) Combined() string {
	return string(r.Stdout) + string(r.Stderr)
}

// Runner executes commands. Implementations must return a *SubprocessError
// for non-zero exits, alongside the Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	// Timeout bounds each command. Zero means only ctx bounds it.
	Timeout time.Duration
	// KillGrace is how long to wait for output pipes after the process is
	// killed before giving up on them.
	KillGrace time.Duration
}

// Run implements Runner.
func (e Exec) Run(ctx context.Context, c Command) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	if e.KillGrace > 0 {
		cmd.WaitDelay = e.KillGrace
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		res.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, cerrors.NewTimeoutError(c.Name, e.Timeout.String())
		}
		return res, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, cerrors.NewSubprocessError(c.Name, res.ExitCode, string(res.Stderr), nil)
		}
		res.ExitCode = -1
		return res, cerrors.NewSubprocessError(c.Name, -1, string(res.Stderr), err)
	}
	return res, nil
}

// ExitCode extracts the exit status from an error returned by a Runner.
// It returns 0 for nil and -1 when the error carries no status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var subErr *cerrors.SubprocessError
	if errors.As(err, &subErr) {
		return subErr.ExitCode
	}
	return -1
}
