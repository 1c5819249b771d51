package errors

import (
	"errors"
	"fmt"
)

// Password errors indicate that no usable passphrase could be obtained.
var (
	// ErrEmptyPassword indicates an attempt to encrypt with a blank passphrase.
	ErrEmptyPassword = errors.New("no password supplied")

	// ErrNoPasswordAvailable indicates that no passphrase was configured and
	// the session is not interactive, so none can be asked for.
	ErrNoPasswordAvailable = errors.New("no password available in non-interactive mode")

	// ErrInvalidEnvPassword indicates the passphrase from FLINT_PASSWORD does
	// not decrypt the repository.
	ErrInvalidEnvPassword = errors.New("invalid password passed via FLINT_PASSWORD")

	// ErrPasswordMismatch indicates the confirmation prompt was exhausted
	// without two matching entries.
	ErrPasswordMismatch = errors.New("passphrases differ")

	// ErrNotInteractive indicates an interactive-only operation was run
	// without a terminal.
	ErrNotInteractive = errors.New("this operation requires an interactive terminal")
)

// Cryptographic errors indicate failures during encryption or decryption.
var (
	// ErrEncryptFailed indicates file encryption failed.
	ErrEncryptFailed = errors.New("failed to encrypt file")

	// ErrDecryptFailed indicates decryption failed with every candidate digest.
	ErrDecryptFailed = errors.New("failed to decrypt file")
)

// Repository errors indicate failures while driving git.
var (
	// ErrCloneFailed indicates the remote repository could not be cloned.
	ErrCloneFailed = errors.New("failed to clone keystores repository")

	// ErrCheckoutFailed indicates the requested branch could not be checked out.
	ErrCheckoutFailed = errors.New("failed to check out branch")

	// ErrCommitFailed indicates staging or committing changes failed.
	ErrCommitFailed = errors.New("failed to commit changes")

	// ErrPushFailed indicates the push to the remote was rejected or failed.
	ErrPushFailed = errors.New("failed to push changes")

	// ErrNoWorkspace indicates an operation needed an open workspace.
	ErrNoWorkspace = errors.New("no workspace is open")

	// ErrMigrationLoop indicates the repository still looked unversioned
	// right after a migration.
	ErrMigrationLoop = errors.New("repository still has the legacy layout after migration")
)

// Artifact errors indicate issues with keystore files.
var (
	// ErrReadOnlyArtifactMissing indicates a keystore is missing while
	// read-only mode forbids generating a new one.
	ErrReadOnlyArtifactMissing = errors.New("no keystore found and read-only mode forbids creating one")

	// ErrReadOnlyNuke indicates nuke was requested in read-only mode.
	ErrReadOnlyNuke = errors.New("nuke does not delete anything in read-only mode")

	// ErrKeytoolFailed indicates the keystore tool exited with an error.
	ErrKeytoolFailed = errors.New("keytool failed")

	// ErrFlintfileExists indicates setup found an existing Flintfile.
	ErrFlintfileExists = errors.New("a Flintfile already exists")
)

// Configuration errors indicate unusable options.
var (
	// ErrInvalidOption indicates a missing or malformed option.
	ErrInvalidOption = errors.New("invalid option")
)

// Remediator is implemented by errors that know how the user can fix them.
type Remediator interface {
	Remediation() string
}

// Remediation returns the remediation hint of the first error in err's chain
// that provides one, or an empty string.
func Remediation(err error) string {
	var r Remediator
	if errors.As(err, &r) {
		return r.Remediation()
	}
	switch {
	case errors.Is(err, ErrNoPasswordAvailable):
		return "Try setting the FLINT_PASSWORD environment variable, or temporarily enable interactive mode to store a password"
	case errors.Is(err, ErrInvalidEnvPassword):
		return "Set FLINT_PASSWORD to the passphrase the repository was encrypted with"
	case errors.Is(err, ErrReadOnlyArtifactMissing):
		return "Run flint once without --readonly to generate the keystore"
	case errors.Is(err, ErrNotInteractive):
		return "Run this command from an interactive terminal"
	case errors.Is(err, ErrInvalidOption):
		return "Check the Flintfile, the FLINT_* environment variables and the flags you passed"
	}
	return ""
}

// CloneError describes a failed clone. Command is the exact command line
// that was run, so the user can repeat it by hand.
type CloneError struct {
	URL                 string
	Branch              string
	Command             string
	CloneBranchDirectly bool
	Err                 error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("%v from %s: %v", ErrCloneFailed, e.URL, e.Err)
}

func (e *CloneError) Unwrap() []error {
	return []error{ErrCloneFailed, e.Err}
}

// Remediation explains how to diagnose the failed clone.
func (e *CloneError) Remediation() string {
	hint := "Make sure you have read access to the repository. Run the following command manually to check you are authenticated:\n    " + e.Command
	if e.CloneBranchDirectly && e.Branch != "" {
		hint = fmt.Sprintf("You passed '%s' as branch together with --clone-branch-directly. Remove that option on the first run so flint can create the branch.\n", e.Branch) + hint
	}
	return hint
}

// GitError describes a failed commit or push. The workspace is left on disk
// for inspection and its path is reported here.
type GitError struct {
	Op        string
	Workspace string
	Err       error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("couldn't %s changes back to git: %v", e.Op, e.Err)
}

func (e *GitError) Unwrap() []error {
	if e.Op == "push" {
		return []error{ErrPushFailed, e.Err}
	}
	return []error{ErrCommitFailed, e.Err}
}

// Remediation points the user at the preserved workspace.
func (e *GitError) Remediation() string {
	return "The workspace was kept for inspection at " + e.Workspace + "; delete it once you are done"
}
