package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/thorgate/flint/internal/utils"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`      // RFC3339 with microseconds.
	Session   string `json:"session"` // UUID shared by all entries of one run.
	User      string `json:"user"`    // OS user performing the action.
	Host      string `json:"host"`    // Machine performing the action.
	Operation string `json:"op"`      // Operation name.

	// Optional fields depending on operation.
	Repo   string   `json:"repo,omitempty"`   // Remote URL.
	Branch string   `json:"branch,omitempty"` // Remote branch.
	Type   string   `json:"type,omitempty"`   // development or release.
	Files  []string `json:"files,omitempty"`  // Artifacts added or removed.
}

// Trail appends entries to one audit log file.
type Trail struct {
	// Path of the log. Empty disables logging.
	Path    string
	Session string
}

// NewTrail returns a trail writing to DefaultPath with a fresh session id.
func NewTrail() *Trail {
	return &Trail{Path: DefaultPath(), Session: uuid.NewString()}
}

// DefaultPath returns <user config dir>/flint/audit.jsonl, or an empty
// string when there is no user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "flint", "audit.jsonl")
}

// Log appends an entry to the audit log.
// If logging fails it is silently dropped; operations should not fail just
// because audit logging failed.
func (t *Trail) Log(entry Entry) {
	if t == nil || t.Path == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.Session == "" {
		entry.Session = t.Session
	}
	if entry.User == "" {
		entry.User, _ = utils.GetUsername()
	}
	if entry.Host == "" {
		entry.Host, _ = utils.GetHostname()
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log at path.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
