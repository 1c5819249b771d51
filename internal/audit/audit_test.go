package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrail(t *testing.T) *Trail {
	t.Helper()
	return &Trail{Path: filepath.Join(t.TempDir(), "flint", "audit.jsonl"), Session: uuid.NewString()}
}

func TestLog_CreatesFile(t *testing.T) {
	trail := newTestTrail(t)

	trail.Log(Entry{Operation: "sync", Repo: "git@example.com:keys.git", Files: []string{"certs/a-release.keystore"}})

	info, err := os.Stat(trail.Path)
	require.NoError(t, err, "audit log file was not created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLog_AppendsEntries(t *testing.T) {
	trail := newTestTrail(t)

	trail.Log(Entry{Operation: "sync", Type: "development"})
	trail.Log(Entry{Operation: "nuke", Type: "release", Files: []string{"certs/a-release.keystore"}})
	trail.Log(Entry{Operation: "change-password"})

	entries, err := ReadEntries(trail.Path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "sync", entries[0].Operation)
	assert.Equal(t, "nuke", entries[1].Operation)
	assert.Equal(t, []string{"certs/a-release.keystore"}, entries[1].Files)
	assert.Equal(t, "change-password", entries[2].Operation)

	for _, e := range entries {
		assert.Equal(t, trail.Session, e.Session)
		assert.NotEmpty(t, e.Timestamp)
	}
}

func TestLog_Disabled(t *testing.T) {
	var nilTrail *Trail
	nilTrail.Log(Entry{Operation: "sync"})
	(&Trail{}).Log(Entry{Operation: "sync"})
}

func TestLog_UnwritableIsIgnored(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	trail := &Trail{Path: filepath.Join(blocker, "audit.jsonl")}
	trail.Log(Entry{Operation: "sync"})
}

func TestReadEntries_Missing(t *testing.T) {
	entries, err := ReadEntries(filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestParseEntries_SkipsMalformed(t *testing.T) {
	data := []byte(`{"ts":"2024-01-01T00:00:00.000000Z","op":"sync"}
not json
{"ts":"2024-01-02T00:00:00.000000Z","op":"nuke"}
`)
	entries, err := ParseEntries(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sync", entries[0].Operation)
	assert.Equal(t, "nuke", entries[1].Operation)
}

func TestNewTrail(t *testing.T) {
	trail := NewTrail()
	_, err := uuid.Parse(trail.Session)
	assert.NoError(t, err)
}
