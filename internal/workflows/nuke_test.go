package workflows

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/password"
	"github.com/thorgate/flint/internal/workspace"
)

func (h *harness) seedBoth(t *testing.T) {
	t.Helper()
	h.env[password.EnvVar] = "repo-pass"
	h.seed(t, "repo-pass", map[string]string{
		devArtifact: keystoreContent(devAlias, "repo-pass"),
		relArtifact: keystoreContent("com_example_app-release", "repo-pass"),
	})
}

func (h *harness) nuke(t *testing.T, confirm ConfirmFunc) (*NukeResult, error) {
	t.Helper()
	return Nuke(context.Background(), h.session, NukeOptions{
		Options: h.opts,
		Type:    "development",
		Confirm: confirm,
		Log:     logger.Discard(),
		Trail:   h.trail,
	})
}

func TestNuke_DeletesOneType(t *testing.T) {
	h := newHarness(t)
	h.seedBoth(t)

	var asked []string
	result, err := h.nuke(t, func(root string, files []string) (bool, error) {
		for _, f := range files {
			rel, err := filepath.Rel(root, f)
			require.NoError(t, err)
			asked = append(asked, filepath.ToSlash(rel))
		}
		return true, nil
	})
	require.NoError(t, err)

	assert.True(t, result.Deleted)
	assert.Equal(t, []string{devArtifact}, result.Files)
	assert.Equal(t, []string{devArtifact}, asked)

	assert.Equal(t, []string{
		"add -A",
		"commit [flint] Nuked files for development",
		"push master",
	}, h.git.Mutations())
	assert.Equal(t, []string{relArtifact, workspace.VersionFile}, h.git.RemoteFiles("master"))
	assert.Equal(t, keystoreContent("com_example_app-release", "repo-pass"), h.remotePlaintext(t, relArtifact, "repo-pass"))
	assert.Equal(t, []string{"nuke"}, h.auditOps(t))
}

func TestNuke_Cancelled(t *testing.T) {
	h := newHarness(t)
	h.seedBoth(t)

	result, err := h.nuke(t, func(string, []string) (bool, error) { return false, nil })
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.False(t, result.Deleted)
	assert.Empty(t, h.git.Mutations())
	assert.Empty(t, h.session.Dir())
	assert.Len(t, h.git.RemoteFiles("master"), 3)
}

func TestNuke_SkipConfirmation(t *testing.T) {
	h := newHarness(t)
	h.seedBoth(t)
	h.opts.SkipConfirmation = true

	result, err := h.nuke(t, nil)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.NotContains(t, h.git.RemoteFiles("master"), devArtifact)
}

func TestNuke_NilConfirmRefuses(t *testing.T) {
	h := newHarness(t)
	h.seedBoth(t)

	result, err := h.nuke(t, nil)
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Empty(t, h.git.Mutations())
}

func TestNuke_Readonly(t *testing.T) {
	h := newHarness(t)
	h.seedBoth(t)
	h.opts.Readonly = true

	_, err := h.nuke(t, func(string, []string) (bool, error) {
		t.Fatal("confirmation must not be asked in read-only mode")
		return false, nil
	})
	require.ErrorIs(t, err, ferrors.ErrReadOnlyNuke)
	assert.Empty(t, h.git.Mutations())
}

func TestNuke_NothingToDelete(t *testing.T) {
	h := newHarness(t)
	h.env[password.EnvVar] = "repo-pass"
	h.seed(t, "repo-pass", map[string]string{relArtifact: "release"})

	result, err := h.nuke(t, func(string, []string) (bool, error) {
		t.Fatal("nothing to confirm")
		return false, nil
	})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.False(t, result.Deleted)
	assert.Empty(t, h.git.Mutations())
}

func TestNuke_InvalidType(t *testing.T) {
	h := newHarness(t)
	_, err := Nuke(context.Background(), h.session, NukeOptions{Options: h.opts, Type: "staging"})
	require.ErrorIs(t, err, ferrors.ErrInvalidOption)
	assert.Zero(t, h.git.CloneCount)
}
