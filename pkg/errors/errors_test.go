package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"New", New(ErrCodeInvalidInput, "bad %s", "value"), "INVALID_INPUT: bad value"},
		{"Wrap", Wrap(ErrCodeBrokenInvariant, cause, "populate %s", "flow"), "BROKEN_INVARIANT: populate flow: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	sentinel := errors.New("unknown node")
	err := fmt.Errorf("stage edges: %w", Wrap(ErrCodeUnknownNode, fmt.Errorf("node 9: %w", sentinel), "populate"))

	if !errors.Is(err, sentinel) {
		t.Error("sentinel lost through Wrap")
	}
	if GetCode(err) != ErrCodeUnknownNode {
		t.Errorf("GetCode() = %q", GetCode(err))
	}
}

func TestCodeLookups(t *testing.T) {
	inner := New(ErrCodeInvalidSpec, "width must be >= 0")
	outer := Wrap(ErrCodeNotFound, inner, "node 2")

	tests := []struct {
		name      string
		err       error
		code      Code
		isCode    bool
		message   string
		detail    string
		inputLike bool
	}{
		{"plain", errors.New("plain"), "", false, "plain", "plain", false},
		{"coded", inner, ErrCodeInvalidSpec, true, "width must be >= 0", "width must be >= 0", true},
		{"outermost wins", outer, ErrCodeNotFound, true, "node 2", "node 2: INVALID_SPEC: width must be >= 0", true},
		{"behind fmt", fmt.Errorf("load: %w", inner), ErrCodeInvalidSpec, true, "width must be >= 0", "width must be >= 0", true},
		{"internal", New(ErrCodeInternal, "oops"), ErrCodeInternal, true, "oops", "oops", false},
		{"invariant", New(ErrCodeBrokenInvariant, "two anchors"), ErrCodeBrokenInvariant, true, "two anchors", "two anchors", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && Is(tt.err, tt.code) != tt.isCode {
				t.Errorf("Is(%q) = %v", tt.code, !tt.isCode)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if got := Detail(tt.err); got != tt.detail {
				t.Errorf("Detail() = %q, want %q", got, tt.detail)
			}
			if got := IsInputError(tt.err); got != tt.inputLike {
				t.Errorf("IsInputError() = %v, want %v", got, tt.inputLike)
			}
		})
	}
}

func TestIsInner(t *testing.T) {
	err := Wrap(ErrCodeNotFound, New(ErrCodeInvalidSpec, "x"), "y")
	if Is(err, ErrCodeInvalidSpec) {
		t.Error("Is should only look at the outermost coded error")
	}
}
