// Package utils provides shared utility functions for the flint application.
//
// This package contains general-purpose helpers used across multiple packages.
// Functions are organized into logical groups:
//
// # Filesystem Utilities
//
// Functions for working with the filesystem and project structure:
//   - FindFlintfile: walks up directories to find a Flintfile
//   - ResolvePath: resolves option paths against the Flintfile directory
//   - FormatPaths: formats file paths for human-readable output
//
// # System Utilities
//
// Functions for interacting with the operating system:
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//
// # String Utilities
//
// Functions for keystore naming and validation:
//   - SanitizeIdentifier: turns an application identifier into a file stem
//   - KeystoreName: builds <app>-<type>.keystore
//   - IsValidEmail: checks the git author email
//
// # I/O Utilities
//
//   - Confirm: asks a yes/no question on a reader/writer pair
//
// # Terminal Utilities
//
// Functions for terminal detection and hidden passphrase input:
//   - IsTerminal: checks if stdin is a terminal
//   - ReadPassphrase: reads a passphrase without echo
package utils
