// Package validation contains input checks for the command-line surface.
package validation

import (
	"fmt"
	"os"
)

// IsValidInputFile checks that a given path exists and is a regular file.
func IsValidInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("no input file given")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}

	return nil
}
