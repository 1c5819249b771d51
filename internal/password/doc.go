// Package password resolves the passphrase that encrypts a keystore
// repository.
//
// A Broker looks in three places, in order:
//
//  1. the FLINT_PASSWORD environment variable (never cached)
//  2. its per-session cache, keyed by repository Identity
//  3. an interactive Prompter, asking twice for confirmation
//
// A cache entry can be cleared after a failed decrypt. Cleared differs from
// unset only in intent: both make the next Resolve prompt again.
//
// Passphrases are never logged.
package password
