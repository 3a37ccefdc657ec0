package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"positive", 2048, 2048, false},
		{"unit", 1, 1, false},
		{"zero width", 0, 10, true},
		{"zero height", 10, 0, true},
		{"negative", -5, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions("page", tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateDimensions(%d, %d) returned wrong error code: %v", tt.w, tt.h, err)
			}
		})
	}
}

func TestValidateFinite(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"negative", -12.5, false},
		{"nan", math.NaN(), true},
		{"+inf", math.Inf(1), true},
		{"-inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinite("start", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFinite(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLabelID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "button", false},
		{"with path chars", "icons/save@2x", false},
		{"unicode", "glyph-é", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 1025), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabelID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabelID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2f1c7a7e-7a42-4c8e-9d44-0c4a6f1d2b3e", false},
		{"", true},
		{"not-a-uuid", true},
		{"2F1C7A7E-7A42-4C8E-9D44-0C4A6F1D2B3E", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateDocumentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
