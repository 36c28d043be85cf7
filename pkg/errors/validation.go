package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Supported diagram document extensions.
var documentExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// ValidatePath validates a diagram document path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Extension must be .json, .yaml, .yml or .toml
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !documentExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported document type %q (want .json, .yaml, .yml or .toml)", ext)
	}

	return nil
}

// ValidateCanvasID validates a canvas identifier.
// Canvas ids are opaque to the graph model but end up in URLs and log
// lines, so they must be short, printable and free of whitespace.
func ValidateCanvasID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "canvas id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "canvas id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "canvas id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "canvas id cannot contain path separators")
	}
	return nil
}
