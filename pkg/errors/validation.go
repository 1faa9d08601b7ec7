package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePath validates a source path relative to a served root directory.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateSourceFile checks that path names a file the Python front end
// accepts. Only the extension is inspected; existence is checked at parse time.
func ValidateSourceFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "entry file cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return nil
	}
	return New(ErrCodeUnsupportedFile, "unsupported source file %q (expected .py or .pyi)", filepath.Base(path))
}
