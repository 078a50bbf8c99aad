package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateFraction checks that v lies in (0, 1].
// Group and bar widths are fractions of the available span; zero would
// produce invisible bars and anything above one overlaps neighbours.
func ValidateFraction(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidOption, "%s must be a finite number", name)
	}
	if v <= 0 || v > 1 {
		return New(ErrCodeInvalidOption, "%s must be in (0, 1], got %g", name, v)
	}
	return nil
}

// ValidateZoomFactor checks that f lies in the open interval (0, 1).
func ValidateZoomFactor(f float64) error {
	if math.IsNaN(f) || f <= 0 || f >= 1 {
		return New(ErrCodeInvalidOption, "zoom factor must be in (0, 1), got %g", f)
	}
	return nil
}

// datasetNameRegex matches dataset names usable as store keys and file names.
var datasetNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDatasetName validates a dataset name for safety and correctness.
// Names become file names in the file store and document keys in MongoDB,
// so they are rejected if they could be used for path traversal.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 128 characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "dataset name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "dataset name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "dataset name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "dataset name contains invalid characters: %q", pattern)
		}
	}

	if !datasetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid dataset name: %q", name)
	}

	return nil
}
