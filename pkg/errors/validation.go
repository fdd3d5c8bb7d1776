package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from external input.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node identifier received from a CLI flag or an
// API request. The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of MaxNodeIDLength bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node ID cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidNode, "node ID too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node ID contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidNode, "node ID has surrounding whitespace: %q", id)
	}

	return nil
}

// ValidatePath validates a hierarchy file path given on the command line.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "path contains null bytes")
	}

	return nil
}
