package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// FlintfileName is the name of the per-project options file.
const FlintfileName = "Flintfile"

// FindFlintfile traverses up directories from start looking for a Flintfile,
// either directly in a directory or in its fastlane/ subdirectory.
// Returns the path to the file if found, empty string otherwise.
// Stops searching when it reaches the user's home directory.
func FindFlintfile(start string) (string, error) {
	currentDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	for {
		// Stop searching at one level above home directory
		if currentDir == path.Join(homeDir, "..") {
			return "", nil
		}

		for _, candidate := range []string{
			filepath.Join(currentDir, FlintfileName),
			filepath.Join(currentDir, "fastlane", FlintfileName),
		} {
			info, err := os.Stat(candidate)
			if err == nil {
				if info.Mode().IsRegular() {
					return candidate, nil
				}
			} else if !os.IsNotExist(err) {
				return "", fmt.Errorf("error checking for %s: %w", candidate, err)
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// ResolvePath returns p unchanged when it is absolute or base is empty, and
// joined onto base otherwise.
func ResolvePath(base, p string) string {
	if p == "" || base == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
