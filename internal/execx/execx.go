// Package execx invokes external programs and reports their exit codes.
//
// Every helper returns a Result instead of a bare error because callers
// care about the numeric code an external program exited with, not just
// whether it failed. The code is defined by the invoked program's own
// contract (curl, apt-get, useradd, ...); execx does not interpret it.
package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Exit codes synthesized when the program never produced one itself.
const (
	// CodeTimeout is reported when the context deadline killed the program,
	// matching the convention of timeout(1).
	CodeTimeout = 124
	// CodeNotStarted is reported when the program could not be started at
	// all (not found, permission denied).
	CodeNotStarted = 127
)

// Result is the outcome of one external invocation.
// Code is 0 on success; Err carries the underlying failure when Code != 0.
type Result struct {
	Code int
	Err  error
}

// Ok reports whether the invocation succeeded.
func (r Result) Ok() bool { return r.Code == 0 }

// Run executes a program streaming its output to the caller's stdout and
// stderr, and returns the program's exit code.
func Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return finish(ctx, name, args, cmd.Run())
}

// RunQuiet executes a program discarding its output. Output is still
// logged at debug level so --debug surfaces it.
func RunQuiet(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	res := finish(ctx, name, args, cmd.Run())
	if buf.Len() > 0 {
		slog.Debug("command output", "command", name, "output", buf.String())
	}
	return res
}

// RunInput executes a program with the given stdin content, streaming
// output to the caller's stdout and stderr.
func RunInput(ctx context.Context, input []byte, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return finish(ctx, name, args, cmd.Run())
}

// Capture executes a program and returns its stdout. Stderr streams to
// the caller's stderr.
func Capture(ctx context.Context, name string, args ...string) (string, Result) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	res := finish(ctx, name, args, cmd.Run())
	return out.String(), res
}

func finish(ctx context.Context, name string, args []string, err error) Result {
	slog.Debug("ran command", "command", CommandLine(name, args...), "err", err)
	if err == nil {
		return Result{}
	}
	// Deadline wins over ExitError: a process killed by the context
	// deadline reports exit code -1, not a usable one.
	if ctx.Err() == context.DeadlineExceeded {
		return Result{Code: CodeTimeout, Err: err}
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return Result{Code: code, Err: err}
		}
		// Terminated by a signal without a deadline.
		return Result{Code: 1, Err: err}
	}
	return Result{Code: CodeNotStarted, Err: err}
}

// CommandLine renders a program and its arguments the way a shell trace
// would show them.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Echo prints a shell-trace line ("+ cmd args") for dry runs.
func Echo(w io.Writer, name string, args ...string) {
	_, _ = io.WriteString(w, "+ "+CommandLine(name, args...)+"\n")
}
