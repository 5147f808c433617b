package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers accepted from hosts.
const maxNodeIDLength = 256

// ValidateNodeID validates a node identifier supplied by a host.
//
// Identifiers are used verbatim in connection-cache keys ("<from>-<to>"),
// DOT output and SVG element ids, so the rules are conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No double quotes (they would break DOT and SVG attributes)
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}

	if strings.ContainsRune(id, '"') {
		return New(ErrCodeInvalidNodeID, "node id %q contains a double quote", id)
	}

	return nil
}

// ValidateGap validates a spacing value. Gaps must be finite and non-negative.
func ValidateGap(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidSpacing, "%s must be finite", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidSpacing, "%s must be >= 0, got %v", name, v)
	}
	return nil
}

// ValidateExtent validates one dimension of a node bounding box.
func ValidateExtent(id, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidInput, "node %q: %s must be a finite value >= 0, got %v", id, name, v)
	}
	return nil
}
