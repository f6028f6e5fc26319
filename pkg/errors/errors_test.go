package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeNotFound, "binary missing"),
			want: "[NOT_FOUND] binary missing",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeInvocation, "spawn failed", stderrors.New("permission denied")),
			want: "[INVOCATION_FAILED] spawn failed: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := fmt.Errorf("outer: %w", Wrap(ErrCodeTimeout, "timed out", cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var se *StructuredError
	if !stderrors.As(err, &se) {
		t.Fatal("errors.As should find the StructuredError")
	}
	if se.Code != ErrCodeTimeout {
		t.Errorf("Code = %s, want %s", se.Code, ErrCodeTimeout)
	}
}

func TestWrapWithContext(t *testing.T) {
	err := WrapWithContext(ErrCodeGeneration, "write failed", stderrors.New("disk full"), map[string]any{"file": "main.go"})
	if err.Context["file"] != "main.go" {
		t.Errorf("Context[file] = %v, want main.go", err.Context["file"])
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(stderrors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	wrapped := fmt.Errorf("context: %w", New(ErrCodeCycle, "loop"))
	if got := CodeOf(wrapped); got != ErrCodeCycle {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, ErrCodeCycle)
	}
}

func TestHasCode(t *testing.T) {
	inner := New(ErrCodeTimeout, "slow")
	outer := Wrap(ErrCodeInvocation, "help failed", inner)

	if !HasCode(outer, ErrCodeInvocation) {
		t.Error("expected outer code to match")
	}
	if !HasCode(outer, ErrCodeTimeout) {
		t.Error("expected inner code to match")
	}
	if HasCode(outer, ErrCodeNotFound) {
		t.Error("unexpected match for NOT_FOUND")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error should not match")
	}
}
