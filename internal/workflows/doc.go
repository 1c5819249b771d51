// Package workflows provides high-level orchestration for flint commands.
//
// Workflows coordinate the workspace session, the keystore tool, the
// installer and the audit trail to implement complete user-facing features.
// Each workflow handles a single command's business logic, independent of
// CLI concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Loads options and builds the session
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Validating options
//   - Opening, changing and committing the keystores repository
//   - Installing and activating keystores in the Android project
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Sync: fetches or creates the keystore for one type and installs it
//   - Nuke: deletes every keystore of one type from the repository
//   - Decrypt: leaves a decrypted clone on disk for inspection
//   - ChangePassword: re-encrypts the repository with a new passphrase
//   - Setup: writes a starter Flintfile
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Sync(ctx, session, opts)
//	if errors.Is(err, ferrors.ErrReadOnlyArtifactMissing) {
//	    // explain how to create the keystore
//	}
//
// The session passed to a workflow is owned by the caller, which must defer
// Session.Shutdown so a failed workflow never leaves plaintext behind.
package workflows
