package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidConfig, "measure %q has negative duration", "parse"),
			`INVALID_CONFIG: measure "parse" has negative duration`},
		{Wrap(ErrCodeInvalidInput, cause, "decode trace %s", "run.json"),
			"INVALID_INPUT: decode trace run.json: unexpected EOF"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeFileNotFound, cause, "open sprites")

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestCodesThroughChain(t *testing.T) {
	oversized := New(ErrCodeOversizedInput, "image %q is 300x10", "huge")
	nested := Wrap(ErrCodeInternal, oversized, "shard 2")
	viaFmt := fmt.Errorf("pack: %w", oversized)
	plain := errors.New("plain")

	tests := []struct {
		name     string
		err      error
		code     Code
		wantIs   bool
		wantCode Code
		wantMsg  string
	}{
		{"direct", oversized, ErrCodeOversizedInput, true, ErrCodeOversizedInput, `image "huge" is 300x10`},
		{"other code", oversized, ErrCodeInvalidInput, false, ErrCodeOversizedInput, `image "huge" is 300x10`},
		{"fmt wrapped", viaFmt, ErrCodeOversizedInput, true, ErrCodeOversizedInput, `image "huge" is 300x10`},
		{"inner code of nested", nested, ErrCodeOversizedInput, true, ErrCodeInternal, "shard 2"},
		{"outer code of nested", nested, ErrCodeInternal, true, ErrCodeInternal, "shard 2"},
		{"uncoded", plain, ErrCodeInternal, false, "", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode = %q, want %q", got, tt.wantCode)
			}
			if got := UserMessage(tt.err); got != tt.wantMsg {
				t.Errorf("UserMessage = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	if Is(nil, ErrCodeInternal) || GetCode(nil) != "" {
		t.Error("nil error must carry no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeOversizedInput, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{ErrCodeInvariantViolation, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
