package utils

import (
	"regexp"
	"strings"

	"github.com/thorgate/flint/internal/ui"
)

// emailRegex is a simple regex for validating email format.
// It checks for: local-part@domain.tld format.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidEmail checks if the given string is a valid email address format.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// SanitizeIdentifier turns an application identifier such as
// com.example.app into a file name stem (com_example_app).
func SanitizeIdentifier(appID string) string {
	return strings.ReplaceAll(strings.TrimSpace(appID), ".", "_")
}

// KeystoreName returns the artifact file name for an application and
// environment, e.g. com_example_app-release.keystore.
func KeystoreName(appID, environment string) string {
	return SanitizeIdentifier(appID) + "-" + environment + ".keystore"
}
