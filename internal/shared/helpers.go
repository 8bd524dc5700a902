// Package shared provides common utility functions used across multiple
// packages in the cxxforge codebase.
package shared

import (
	"fmt"
	"strings"
)

// SafeDirName transforms a dependency name into a filesystem-safe cache
// directory name. Anything outside [a-zA-Z0-9._-] becomes a hyphen.
func SafeDirName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
