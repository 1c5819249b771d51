package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/thorgate/flint/internal/logging"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("git binary not available")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "flint test")
	t.Setenv("GIT_AUTHOR_EMAIL", "flint@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "flint test")
	t.Setenv("GIT_COMMITTER_EMAIL", "flint@example.com")
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

// seedRemote creates a bare repository whose master branch holds one file.
func seedRemote(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	gitCmd(t, root, "init", "--bare", remote)
	gitCmd(t, remote, "symbolic-ref", "HEAD", "refs/heads/master")

	seed := filepath.Join(root, "seed")
	gitCmd(t, root, "init", seed)
	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("keys\n"), 0644))
	gitCmd(t, seed, "add", "-A")
	gitCmd(t, seed, "commit", "-m", "initial")
	gitCmd(t, seed, "push", remote, "HEAD:master")
	return remote
}

func TestCLI_CloneCommitPush(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := seedRemote(t)
	c := NewCLI(logger.Discard())

	dir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, c.Clone(ctx, remote, dir, CloneOptions{}))
	require.NoError(t, c.ConfigureUser(ctx, dir, "Flint Bot", "bot@example.com"))
	assert.Equal(t, "Flint Bot\n", gitCmd(t, dir, "config", "user.name"))

	changed, err := c.ChangedFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, changed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "certs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "certs", "app-release.keystore"), []byte("x"), 0600))

	changed, err = c.ChangedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "certs/app-release.keystore"}, changed)

	require.NoError(t, c.Add(ctx, dir, "certs/app-release.keystore"))
	require.NoError(t, c.Commit(ctx, dir, "[flint] add keystore"))
	require.NoError(t, c.Push(ctx, dir, "master"))

	log := gitCmd(t, remote, "log", "--format=%s", "master")
	assert.Equal(t, "[flint] add keystore\ninitial\n", log)

	files := gitCmd(t, remote, "ls-tree", "-r", "--name-only", "master")
	assert.Equal(t, "README.md\ncerts/app-release.keystore\n", files, "only the explicitly added file was committed")
}

func TestCLI_AddAll(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := seedRemote(t)
	c := NewCLI(logger.Discard())

	dir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, c.Clone(ctx, remote, dir, CloneOptions{Shallow: true}))
	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))
	require.NoError(t, c.AddAll(ctx, dir))
	require.NoError(t, c.Commit(ctx, dir, "remove"))
	require.NoError(t, c.Push(ctx, dir, "master"))

	files := gitCmd(t, remote, "ls-tree", "-r", "--name-only", "master")
	assert.Empty(t, files)
}

func TestCLI_Branches(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := seedRemote(t)
	c := NewCLI(logger.Discard())

	dir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, c.Clone(ctx, remote, dir, CloneOptions{}))

	exists, err := c.RemoteBranchExists(dir, "master")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.RemoteBranchExists(dir, "release")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.CheckoutOrphan(ctx, dir, "release"))
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.True(t, os.IsNotExist(err), "orphan branch starts with an empty tree")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "release.txt"), []byte("r"), 0644))
	require.NoError(t, c.AddAll(ctx, dir))
	require.NoError(t, c.Commit(ctx, dir, "release branch"))
	require.NoError(t, c.Push(ctx, dir, "release"))

	other := filepath.Join(t.TempDir(), "other")
	require.NoError(t, c.Clone(ctx, remote, other, CloneOptions{}))
	exists, err = c.RemoteBranchExists(other, "release")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Checkout(ctx, other, "release"))
	_, err = os.Stat(filepath.Join(other, "release.txt"))
	assert.NoError(t, err)

	direct := filepath.Join(t.TempDir(), "direct")
	require.NoError(t, c.Clone(ctx, remote, direct, CloneOptions{Branch: "release"}))
	_, err = os.Stat(filepath.Join(direct, "release.txt"))
	assert.NoError(t, err)
}

func TestCLI_CloneFailure(t *testing.T) {
	requireGit(t)
	c := NewCLI(logger.Discard())

	missing := filepath.Join(t.TempDir(), "missing.git")
	err := c.Clone(context.Background(), missing, filepath.Join(t.TempDir(), "w"), CloneOptions{})
	require.Error(t, err)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.NotZero(t, runErr.ExitCode)
	assert.Contains(t, runErr.Command, "GIT_TERMINAL_PROMPT=0 git clone")
	assert.Contains(t, runErr.Command, missing)
}
