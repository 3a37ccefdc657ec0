package errors

import (
	"math"
	"regexp"
	"unicode"
)

// ValidateDimensions checks that a width/height pair is strictly positive.
// The what argument names the thing being checked in the error message
// (e.g. "page", "image \"foo\"").
func ValidateDimensions(what string, width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidConfig, "%s dimensions must be positive, got %dx%d", what, width, height)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", what, v)
	}
	return nil
}

// ValidateLabelID rejects image ids that are empty, longer than 1024 bytes,
// or contain control characters. Ids end up in manifests and log lines.
func ValidateLabelID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "image id cannot be empty")
	}

	if len(id) > 1024 {
		return New(ErrCodeInvalidInput, "image id too long (max 1024 bytes)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "image id contains invalid control characters")
		}
	}

	return nil
}

// documentIDRegex matches the canonical textual form of a UUID.
var documentIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateDocumentID validates a stored layout or atlas id.
func ValidateDocumentID(id string) error {
	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid document id: %q", id)
	}
	return nil
}
