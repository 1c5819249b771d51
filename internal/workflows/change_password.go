package workflows

import (
	"context"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/configs"
	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/workspace"
)

const (
	PromptOldPassphrase = "Old passphrase for Git Repo: "
	PromptNewPassphrase = "New passphrase for Git Repo: "
)

// ChangePasswordOptions configures the change-password workflow.
type ChangePasswordOptions struct {
	Options *configs.Options
	Trail   *audit.Trail
}

// ChangePassword asks for the current and a new passphrase and re-encrypts
// the whole repository with the new one. Keystore passwords are changed by
// the session's Repassword hook, see KeystoreRepassword.
//
// Only works interactively; returns ErrNotInteractive otherwise.
func ChangePassword(ctx context.Context, session *workspace.Session, opts ChangePasswordOptions) error {
	o := opts.Options
	if err := o.Validate(); err != nil {
		return err
	}
	if _, err := o.AppIdentifiers(); err != nil {
		return err
	}

	broker := session.Broker()
	from, err := broker.PromptNew(PromptOldPassphrase, false)
	if err != nil {
		return err
	}
	to, err := broker.PromptNew(PromptNewPassphrase, true)
	if err != nil {
		return err
	}
	if to == "" {
		return ferrors.ErrEmptyPassword
	}

	err = session.Rotate(ctx, workspace.RotateOptions{
		Open: openOptions(o),
		From: from,
		To:   to,
	})
	if err != nil {
		return err
	}

	opts.Trail.Log(auditEntry(o, "change-password", "", nil))
	return nil
}
