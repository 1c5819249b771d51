// Package audit records repository mutations made by flint.
//
// Every operation that pushes to the keystore repository (sync creating a
// keystore, nuke, change-password, migration) is appended to a per-user
// audit log, so a developer can later tell which machine created or deleted
// which keystore.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	<user config dir>/flint/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Session id (one UUID per flint run)
//   - OS user and hostname
//   - Operation name
//   - Repository, branch, keystore type and files where relevant
//
// Passphrases are never recorded.
//
// # Usage
//
//	trail := audit.NewTrail()
//	trail.Log(audit.Entry{Operation: "nuke", Repo: url, Type: "release", Files: removed})
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
package audit
