package invoker

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/clint/pkg/errors"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestInvoke_Success(t *testing.T) {
	path := writeScript(t, `echo "Usage: tool [flags]"; echo "args: $*"`)

	res, err := New().Invoke(context.Background(), path, []string{"sub", "--help"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "Usage: tool [flags]\nargs: sub --help", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.False(t, res.Truncated)
	assert.True(t, res.LooksLikeHelp())
}

func TestInvoke_OutputIsCapped(t *testing.T) {
	path := writeScript(t, `head -c 100000 /dev/zero | tr '\0' a; echo short >&2`)

	res, err := New(WithMaxOutput(1024)).Invoke(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Truncated)
	assert.Equal(t, strings.Repeat("a", 1024), res.Stdout)
	assert.Equal(t, "short", res.Stderr)
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 5}

	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, b.truncated)

	n, err = b.Write([]byte("defgh"))
	require.NoError(t, err)
	assert.Equal(t, 5, n, "full length is reported even when bytes are dropped")
	assert.True(t, b.truncated)

	n, err = b.Write([]byte("ij"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "abcde", string(b.Bytes()))
}

func TestInvoke_NonZeroExitIsNotAnError(t *testing.T) {
	path := writeScript(t, `echo "unknown flag: --help" >&2; exit 2`)

	res, err := New().Invoke(context.Background(), path, []string{"--help"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "unknown flag: --help", res.Stderr)
	assert.True(t, res.LooksLikeHelp())
}

func TestInvoke_Timeout(t *testing.T) {
	path := writeScript(t, `echo started; exec sleep 5`)

	start := time.Now()
	res, err := New(WithTimeout(100*time.Millisecond)).Invoke(context.Background(), path, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Less(t, time.Since(start), 5*time.Second)

	var ie *InvocationError
	require.True(t, stderrors.As(err, &ie))
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))
	require.NotNil(t, ie.Partial)
	assert.Equal(t, "started", ie.Partial.Stdout)
}

func TestInvoke_MissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := New().Invoke(context.Background(), missing, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound), "got %v", err)
}

func TestInvoke_Cancelled(t *testing.T) {
	path := writeScript(t, `exec sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Invoke(ctx, path, nil)
	require.Error(t, err)
	assert.False(t, errors.HasCode(err, errors.ErrCodeTimeout))
}

func TestInvoke_EnvironmentOverrides(t *testing.T) {
	path := writeScript(t, `echo "$PAGER $TERM $NO_COLOR $EXTRA"`)
	t.Setenv("PAGER", "less")

	res, err := New(WithEnv("EXTRA=yes")).Invoke(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "cat dumb 1 yes", res.Stdout)
}

func TestEnviron(t *testing.T) {
	env := Environ([]string{"HOME=/home/u", "PAGER=less", "TERM=xterm"}, []string{"TERM=vt100", "X=1"})

	assert.Contains(t, env, "HOME=/home/u")
	assert.Contains(t, env, "PAGER=cat")
	assert.Contains(t, env, "TERM=vt100")
	assert.Contains(t, env, "X=1")
	assert.NotContains(t, env, "PAGER=less")
	assert.NotContains(t, env, "TERM=dumb")

	var terms int
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			terms++
		}
	}
	assert.Equal(t, 1, terms)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello\n", "hello"},
		{"crlf", "a\r\nb\r\n", "a\nb"},
		{"ansi color", "\x1b[1mUsage:\x1b[0m tool", "Usage: tool"},
		{"overstrike bold", "U\bUs\bsa\bag\bge\be", "Usage"},
		{"overstrike underline", "_\bf_\bi_\bl_\be", "file"},
		{"invalid utf8", "ok\xff", "ok�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean([]byte(tt.in)); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExecutable(t *testing.T) {
	path := writeScript(t, "true")

	got, err := Executable(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = Executable("")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	_, err = Executable(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestLooksLikeHelp(t *testing.T) {
	var nilResult *Result
	assert.False(t, nilResult.LooksLikeHelp())
	assert.False(t, (&Result{Stdout: "  \n"}).LooksLikeHelp())
	assert.True(t, (&Result{Stderr: "usage: x"}).LooksLikeHelp())
}
