package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers that end up in file names and store keys.
const maxIDLength = 128

// ValidateID validates a document, node or session identifier.
// Identifiers are used as file names by the file store and as key suffixes by
// the Redis store, so the rules reject anything that could escape a directory:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path separators or traversal sequences: %q", id)
	}

	return nil
}

// ValidateName validates a display name for stacks, nodes and containers.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}
