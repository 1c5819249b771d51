package workspace

import (
	"context"
	"fmt"
)

// RotateOptions describes a passphrase rotation.
type RotateOptions struct {
	Open    OpenOptions
	From    string
	To      string
	Message string

	// legacy skips the Repassword hook. Keystores of a legacy repository
	// never shared its empty passphrase.
	legacy bool
}

// Rotate re-encrypts the whole repository from one passphrase to another
// and pushes the result. The new passphrase is cached for the repository.
func (s *Session) Rotate(ctx context.Context, opts RotateOptions) error {
	s.Discard()

	open := opts.Open
	from := opts.From
	open.ManualPassword = &from
	dir, err := s.Open(ctx, open)
	if err != nil {
		return err
	}

	id := open.identity()
	s.cfg.Broker.Clear(id)
	s.cfg.Broker.Store(id, opts.To)

	if s.cfg.Repassword != nil && !opts.legacy {
		if err := s.cfg.Repassword(ctx, dir, opts.From, opts.To); err != nil {
			return fmt.Errorf("changing keystore passwords: %w", err)
		}
	}

	// Every artifact must be sealed with the new passphrase, changed or not.
	s.sealed = nil

	if _, err := writeVersion(dir, s.cfg.ToolVersion); err != nil {
		return err
	}
	if _, err := writeReadme(dir); err != nil {
		return err
	}

	message := opts.Message
	if message == "" {
		message = "[flint] Changed passphrase"
	}
	to := opts.To
	return s.Commit(ctx, CommitOptions{
		Message:  message,
		URL:      open.URL,
		Branch:   open.branch(),
		Password: &to,
	})
}

// migrate rotates a legacy repository, encrypted with the empty
// passphrase, to the passphrase the broker resolves for it.
func (s *Session) migrate(ctx context.Context, opts OpenOptions) error {
	s.cfg.Log.Warnf("Migrating to new flint...")

	to, err := s.cfg.Broker.Resolve(opts.identity())
	if err != nil {
		s.Discard()
		return err
	}

	open := opts
	open.ManualPassword = nil
	return s.Rotate(ctx, RotateOptions{
		Open:    open,
		From:    "",
		To:      to,
		Message: "[flint] Migrated to versioned repository",
		legacy:  true,
	})
}
