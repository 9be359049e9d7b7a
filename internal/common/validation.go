package common

import (
	"fmt"
	"strings"
)

// ValidateNotEmpty validates that a string is not empty
func ValidateNotEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// ValidateTargetPath validates the out_file argument
func ValidateTargetPath(path string) error {
	if err := ValidateNotEmpty(path); err != nil {
		return fmt.Errorf("out_file: %w", err)
	}
	if strings.HasSuffix(path, "/") {
		return fmt.Errorf("out_file must name a file, not a directory: %s", path)
	}
	return nil
}
