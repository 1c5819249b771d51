// Package workspace manages the decrypted working copy of a keystore
// repository.
//
// A Session owns at most one workspace: a temporary clone whose artifacts
// have been decrypted in place. Open clones, checks out the configured
// branch, migrates legacy repositories and decrypts; Commit re-encrypts,
// stages, commits and pushes; Close and Discard delete the clone.
//
// # Skip-if-unchanged
//
// For every artifact it decrypts, the session remembers the ciphertext it
// read and a BLAKE2b-256 digest of the plaintext. When committing, an
// artifact whose plaintext still has that digest is written back with its
// original ciphertext, so git sees no change and no commit is produced.
// Only artifacts that were really modified (or are new) get a fresh salt.
//
// # Legacy repositories
//
// Repositories created before the version marker existed were encrypted
// with an empty passphrase. Open detects them (no flint_version.txt but a
// README.md) and rotates them to the configured passphrase before
// continuing.
//
// A Session is not safe for concurrent use.
package workspace
