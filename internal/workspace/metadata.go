package workspace

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// VersionFile holds the version of the tool that last wrote the
	// repository. It is stored in plaintext.
	VersionFile = "flint_version.txt"
	// ReadmeFile is the plaintext documentation at the repository root.
	ReadmeFile = "README.md"
)

//go:embed templates/README.md
var readmeTemplate string

// ReadVersion returns the version marker of the workspace at dir, or an
// empty string when there is none.
func ReadVersion(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, VersionFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", VersionFile, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// hasVersion reports whether dir carries a version marker.
func hasVersion(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, VersionFile))
	return err == nil
}

// isLegacy reports whether dir looks like a repository written before the
// version marker existed.
func isLegacy(dir string) bool {
	if hasVersion(dir) {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, ReadmeFile))
	return err == nil
}

// needsVersionUpdate reports whether the marker holding current should be
// replaced by tool. A newer marker is never downgraded. Markers that do not
// parse as semver are replaced unless they match exactly.
func needsVersionUpdate(current, tool string) bool {
	if current == "" {
		return true
	}
	if current == tool {
		return false
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return true
	}
	tv, err := semver.NewVersion(tool)
	if err != nil {
		return false
	}
	return cv.LessThan(tv)
}

// writeVersion updates the marker when needed and reports whether it did.
func writeVersion(dir, tool string) (bool, error) {
	current, err := ReadVersion(dir)
	if err != nil {
		return false, err
	}
	if !needsVersionUpdate(current, tool) {
		return false, nil
	}
	if err := os.WriteFile(filepath.Join(dir, VersionFile), []byte(tool), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", VersionFile, err)
	}
	return true, nil
}

// writeReadme renders the documentation file when it is missing or stale
// and reports whether it did.
func writeReadme(dir string) (bool, error) {
	path := filepath.Join(dir, ReadmeFile)
	if b, err := os.ReadFile(path); err == nil && string(b) == readmeTemplate {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(readmeTemplate), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", ReadmeFile, err)
	}
	return true, nil
}
