package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength caps person and highlight identifiers read from user files.
const MaxIDLength = 256

// ValidateID checks an identifier taken from a highlight file. field names
// the value in the error message ("id", "from", "meta_key", ...).
//
// The rules are conservative:
//   - No empty values
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of MaxIDLength bytes
func ValidateID(field, id string) error {
	if id == "" {
		return New(ErrCodeInvalidHighlight, "%s cannot be empty", field)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidHighlight, "%s too long (max %d characters)", field, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidHighlight, "%s contains invalid control characters", field)
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidHighlight, "%s %q has surrounding whitespace", field, id)
	}
	return nil
}

// ValidateOptionalID is ValidateID for fields where empty means unset.
func ValidateOptionalID(field, id string) error {
	if id == "" {
		return nil
	}
	return ValidateID(field, id)
}
