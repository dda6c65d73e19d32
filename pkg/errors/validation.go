package errors

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidatePlanID checks that id is a canonical UUID as issued by the plan store.
func ValidatePlanID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPlanID, "plan id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidPlanID, err, "invalid plan id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidPlanID, "plan id %q is not in canonical form", id)
	}
	return nil
}

// ValidateOutputFilename validates a generated artifact filename.
// It ensures the name is a simple basename without path components.
func ValidateOutputFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "output filename cannot be empty")
	}

	if len(filename) > 255 {
		return New(ErrCodeInvalidPath, "output filename too long (max 255 characters)")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") || filepath.Base(filename) != filename {
		return New(ErrCodeInvalidPath, "output filename cannot contain path separators")
	}

	if filename == "." || filename == ".." || strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "output filename cannot be hidden or relative: %q", filename)
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output filename contains invalid control characters")
		}
	}

	return nil
}
