// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package invoker runs target programs and captures their help output.
//
// A non-zero exit status is not an error: many programs exit non-zero
// while printing their help page, so the captured output is always
// returned and the caller decides whether it looks like help. Errors are
// reserved for programs that could not be started, did not finish within
// the timeout, or were cancelled.
package invoker

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/clint/pkg/defaults"
	"github.com/NVIDIA/clint/pkg/errors"
)

const (
	// DefaultTimeout bounds a single invocation.
	DefaultTimeout = defaults.InvocationTimeout

	// DefaultMaxOutput caps captured bytes per stream.
	DefaultMaxOutput = defaults.MaxOutputBytes

	waitDelay = defaults.InvocationWaitDelay
)

// Result is the captured outcome of one invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	// Truncated is set when either stream exceeded the capture limit.
	Truncated bool
}

// LooksLikeHelp reports whether the invocation produced any text at all.
// Whether that text is structured help is decided by the help parser; a
// non-zero exit with output is still treated as a candidate help page.
func (r *Result) LooksLikeHelp() bool {
	return r != nil && strings.TrimSpace(r.Stdout+r.Stderr) != ""
}

// Invoker runs a program with arguments and captures its output.
type Invoker interface {
	Invoke(ctx context.Context, path string, args []string) (*Result, error)
}

// InvocationError reports a program that could not be run to completion.
// Partial holds whatever output was captured before the failure.
type InvocationError struct {
	Command string
	Partial *Result
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %q: %v", e.Command, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ExecInvoker runs programs as local subprocesses.
type ExecInvoker struct {
	timeout   time.Duration
	maxOutput int
	env       []string
	dir       string
	limiter   *rate.Limiter
}

// Option is a functional option for configuring ExecInvoker instances.
type Option func(*ExecInvoker)

// WithTimeout sets the per-invocation timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *ExecInvoker) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxOutput caps the captured bytes of stdout and of stderr. Output
// beyond the cap is discarded. Non-positive values are ignored.
func WithMaxOutput(n int) Option {
	return func(e *ExecInvoker) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// WithEnv adds KEY=VALUE entries applied after the built-in overrides.
func WithEnv(kv ...string) Option {
	return func(e *ExecInvoker) {
		e.env = append(e.env, kv...)
	}
}

// WithDir sets the working directory of invoked programs.
func WithDir(dir string) Option {
	return func(e *ExecInvoker) {
		e.dir = dir
	}
}

// WithRateLimit caps how often new processes are spawned.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(e *ExecInvoker) {
		if limit > 0 {
			e.limiter = rate.NewLimiter(limit, max(burst, 1))
		}
	}
}

// New creates an ExecInvoker.
func New(opts ...Option) *ExecInvoker {
	e := &ExecInvoker{timeout: DefaultTimeout, maxOutput: DefaultMaxOutput}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the per-invocation timeout.
func (e *ExecInvoker) Timeout() time.Duration {
	return e.timeout
}

// Invoke runs path with args, stdin closed, and returns its cleaned output.
func (e *ExecInvoker) Invoke(ctx context.Context, path string, args []string) (*Result, error) {
	command := strings.TrimSpace(path + " " + strings.Join(args, " "))

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			invocationTotal.WithLabelValues("cancelled").Inc()
			return nil, &InvocationError{
				Command: command,
				Err:     errors.Wrap(errors.ErrCodeUnavailable, "spawn rate limiter wait aborted", err),
			}
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Env = Environ(os.Environ(), e.env)
	cmd.Dir = e.dir
	cmd.WaitDelay = waitDelay

	stdout := &cappedBuffer{limit: e.maxOutput}
	stderr := &cappedBuffer{limit: e.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	slog.Debug("invoking", slog.String("command", command))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	invocationDuration.Observe(elapsed.Seconds())

	res := &Result{
		Stdout:    Clean(stdout.Bytes()),
		Stderr:    Clean(stderr.Bytes()),
		Duration:  elapsed,
		Truncated: stdout.truncated || stderr.truncated,
	}
	if res.Truncated {
		slog.Warn("output truncated",
			slog.String("command", command),
			slog.Int("limit_bytes", e.maxOutput))
	}

	switch {
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.ExitCode = -1
		invocationTotal.WithLabelValues("timeout").Inc()
		return nil, &InvocationError{
			Command: command,
			Partial: res,
			Err:     errors.New(errors.ErrCodeTimeout, fmt.Sprintf("no exit within %s, process killed", e.timeout)),
		}
	case ctx.Err() != nil:
		invocationTotal.WithLabelValues("cancelled").Inc()
		return nil, &InvocationError{
			Command: command,
			Partial: res,
			Err:     errors.Wrap(errors.ErrCodeUnavailable, "invocation cancelled", ctx.Err()),
		}
	case err == nil:
		invocationTotal.WithLabelValues("success").Inc()
		return res, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		invocationTotal.WithLabelValues("nonzero").Inc()
		slog.Debug("non-zero exit",
			slog.String("command", command),
			slog.Int("status", res.ExitCode))
		return res, nil
	}

	invocationTotal.WithLabelValues("error").Inc()
	code := errors.ErrCodeInvocation
	if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
		code = errors.ErrCodeNotFound
	}
	return nil, &InvocationError{
		Command: command,
		Err:     errors.Wrap(code, "failed to start process", err),
	}
}

// cappedBuffer keeps the first limit bytes written to it and drops the
// rest while still reporting full writes, so the process is not stopped
// by a broken pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.limit - b.buf.Len(); n > room {
		b.truncated = true
		p = p[:max(room, 0)]
	}
	b.buf.Write(p)
	return n, nil
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Resolve verifies that path names an executable program.
func (e *ExecInvoker) Resolve(path string) (string, error) {
	return Executable(path)
}

// Executable resolves path the way the shell would and verifies that it
// names an executable file.
func Executable(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "program path is empty")
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("%q is not an executable program", path), err)
	}
	return resolved, nil
}

// Clean converts raw process output to text: invalid UTF-8 is replaced,
// terminal escape sequences and overstrike formatting are removed, and
// line endings are normalized.
func Clean(b []byte) string {
	s := strings.ToValidUTF8(string(b), "�")
	s = stripOverstrike(s)
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, "\n")
}

// stripOverstrike removes man-page style "X\bX" bold and "_\bX" underline.
func stripOverstrike(s string) string {
	if !strings.ContainsRune(s, '\b') {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
