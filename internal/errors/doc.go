// Package errors provides typed error values for the flint application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Failures
// that the user has to fix by hand (a clone that could not authenticate, a
// push that was rejected) are returned as typed errors carrying the context
// needed to diagnose them, and expose a Remediation() hint.
//
// # Error Categories
//
//   - Password errors: no passphrase could be obtained (ErrNoPasswordAvailable)
//   - Crypto errors: encryption/decryption failures (ErrDecryptFailed)
//   - Repository errors: git level failures (ErrCloneFailed, ErrPushFailed)
//   - Artifact errors: keystore lookups and read-only mode (ErrReadOnlyArtifactMissing)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("decrypting %s: %w", path, errors.ErrDecryptFailed)
//
// Handle errors in the CLI layer:
//
//	var cloneErr *ferrors.CloneError
//	if errors.As(err, &cloneErr) {
//	    fmt.Println(cloneErr.Remediation())
//	}
package errors
