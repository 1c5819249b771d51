// Package git drives the git binary for the keystore repository.
//
// Mutating operations (clone, checkout, add, commit, push) run the git
// executable with an explicit argument vector, never through a shell.
// Every invocation is a Command value that also renders itself as a
// copy-pasteable command line, which is what error messages show the user.
//
// Read-only probes (does a remote branch exist, which files changed) open
// the clone with go-git instead of parsing porcelain output.
//
// Clone and push run with GIT_TERMINAL_PROMPT=0 so a missing credential
// fails fast instead of hanging on a prompt.
package git
