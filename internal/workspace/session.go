package workspace

import (
	"context"
	"os"

	"github.com/thorgate/flint/internal/cipher"
	"github.com/thorgate/flint/internal/git"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/password"
)

// DefaultMaxPasswordAttempts bounds how often Open re-prompts after a wrong
// passphrase.
const DefaultMaxPasswordAttempts = 3

// RepasswordFunc re-keys the keystores inside dir during a passphrase
// rotation.
type RepasswordFunc func(ctx context.Context, dir, from, to string) error

// Config wires a Session to its collaborators.
type Config struct {
	Git    git.Client
	Codec  *cipher.Codec
	Broker *password.Broker
	Log    logger.Logger

	// TempRoot is where workspaces are created. Empty means os.TempDir().
	TempRoot string
	// ToolVersion is written to the version marker.
	ToolVersion string
	// MaxPasswordAttempts defaults to DefaultMaxPasswordAttempts.
	MaxPasswordAttempts int
	// Repassword is run during rotations, after decryption and before the
	// artifacts are sealed with the new passphrase. Optional.
	Repassword RepasswordFunc
	// SkipMigration disables legacy repository detection.
	SkipMigration bool
	// SkipDocs stops Commit from writing README.md.
	SkipDocs bool
}

type sealedRecord struct {
	ciphertext []byte
	digest     [32]byte
}

// Session holds the open workspace and the state needed to commit it.
type Session struct {
	cfg Config

	dir    string
	sealed map[string]sealedRecord
}

// NewSession returns a session with no workspace open.
func NewSession(cfg Config) *Session {
	if cfg.Codec == nil {
		cfg.Codec = cipher.New()
	}
	if cfg.ToolVersion == "" {
		cfg.ToolVersion = "0.0.0"
	}
	if cfg.MaxPasswordAttempts <= 0 {
		cfg.MaxPasswordAttempts = DefaultMaxPasswordAttempts
	}
	if cfg.Broker == nil {
		cfg.Broker = password.NewBroker(nil, cfg.Log)
	}
	return &Session{cfg: cfg}
}

// Dir returns the open workspace, or an empty string.
func (s *Session) Dir() string {
	return s.dir
}

// Broker returns the session's password broker.
func (s *Session) Broker() *password.Broker {
	return s.cfg.Broker
}

// Close deletes the workspace after a successful commit.
func (s *Session) Close() {
	s.remove()
}

// Discard deletes the workspace without committing anything.
func (s *Session) Discard() {
	s.remove()
}

// Detach forgets the workspace without deleting it and returns its path.
func (s *Session) Detach() string {
	dir := s.dir
	s.dir = ""
	s.sealed = nil
	return dir
}

// Shutdown discards the workspace and forgets all cached passphrases.
// Commands defer it so every exit path cleans up.
func (s *Session) Shutdown() {
	s.Discard()
	s.cfg.Broker.Reset()
}

func (s *Session) remove() {
	if s.dir != "" {
		if err := os.RemoveAll(s.dir); err != nil {
			s.cfg.Log.Warnf("Failed to remove workspace %s: %v", s.dir, err)
		}
	}
	s.dir = ""
	s.sealed = nil
}
