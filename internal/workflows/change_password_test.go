package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/password"
)

func TestChangePassword(t *testing.T) {
	h := newHarness(t, "old-pass", "new-pass", "new-pass")
	h.seed(t, "old-pass", map[string]string{devArtifact: keystoreContent(devAlias, "old-pass")})

	err := ChangePassword(context.Background(), h.session, ChangePasswordOptions{Options: h.opts, Trail: h.trail})
	require.NoError(t, err)

	assert.Equal(t, []string{PromptOldPassphrase, PromptNewPassphrase, password.PromptConfirm}, h.prompter.Prompts)
	assert.Equal(t, []string{devAlias}, h.keytool.changed, "the missing release keystore is skipped")
	assert.Equal(t, keystoreContent(devAlias, "new-pass"), h.remotePlaintext(t, devArtifact, "new-pass"))
	assert.Contains(t, h.git.Mutations(), "commit [flint] Changed passphrase")
	assert.Equal(t, []string{"change-password"}, h.auditOps(t))

	pw, err := h.session.Broker().Resolve(password.NewIdentity(repoURL, ""))
	require.NoError(t, err)
	assert.Equal(t, "new-pass", pw)
}

func TestChangePassword_WrongOldPassphrase(t *testing.T) {
	h := newHarness(t, "wrong", "new-pass", "new-pass")
	h.seed(t, "old-pass", map[string]string{devArtifact: keystoreContent(devAlias, "old-pass")})

	err := ChangePassword(context.Background(), h.session, ChangePasswordOptions{Options: h.opts})
	require.ErrorIs(t, err, ferrors.ErrDecryptFailed)
	assert.Empty(t, h.git.Mutations())
}

func TestChangePassword_NotInteractive(t *testing.T) {
	h := newHarness(t)
	h.prompter.NonInteractive = true

	err := ChangePassword(context.Background(), h.session, ChangePasswordOptions{Options: h.opts})
	require.ErrorIs(t, err, ferrors.ErrNotInteractive)
	assert.Zero(t, h.git.CloneCount)
}

func TestChangePassword_EmptyNewPassphrase(t *testing.T) {
	h := newHarness(t, "old-pass", "", "")
	h.session.Broker().MaxConfirmAttempts = 2

	err := ChangePassword(context.Background(), h.session, ChangePasswordOptions{Options: h.opts})
	require.ErrorIs(t, err, ferrors.ErrEmptyPassword)
	assert.Zero(t, h.git.CloneCount)
}
