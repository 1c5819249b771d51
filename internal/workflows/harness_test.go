package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/cipher"
	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/git/gittest"
	"github.com/thorgate/flint/internal/keytool"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/password"
	"github.com/thorgate/flint/internal/workspace"
)

const (
	repoURL     = "git@example.com:team/keystores.git"
	appID       = "com.example.app"
	devAlias    = "com_example_app-development"
	devArtifact = "certs/com_example_app-development.keystore"
	relArtifact = "certs/com_example_app-release.keystore"
	toolVersion = "1.0.0"
)

// fakeKeytool stores "keystore <alias> <password>" instead of a real
// keystore.
type fakeKeytool struct {
	generated []string
	changed   []string
}

var _ Keytool = (*fakeKeytool)(nil)

func keystoreContent(alias, pw string) string {
	return fmt.Sprintf("keystore %s %s", alias, pw)
}

func (k *fakeKeytool) Generate(_ context.Context, opts keytool.GenerateOptions) error {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return err
	}
	k.generated = append(k.generated, opts.Alias)
	return os.WriteFile(opts.Path, []byte(keystoreContent(opts.Alias, opts.Password)), 0600)
}

func (k *fakeKeytool) ChangePassword(_ context.Context, path, alias, from, to string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if string(data) != keystoreContent(alias, from) {
		return fmt.Errorf("keystore password was incorrect")
	}
	k.changed = append(k.changed, alias)
	return os.WriteFile(path, []byte(keystoreContent(alias, to)), 0600)
}

func (k *fakeKeytool) List(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "Alias name: " + strings.Fields(string(data))[1], nil
}

type harness struct {
	git      *gittest.Fake
	keytool  *fakeKeytool
	prompter *password.ScriptedPrompter
	env      map[string]string
	session  *workspace.Session
	opts     *configs.Options
	trail    *audit.Trail
	project  string
}

func newHarness(t *testing.T, answers ...string) *harness {
	t.Helper()
	h := &harness{
		git:      gittest.NewFake(),
		keytool:  &fakeKeytool{},
		prompter: &password.ScriptedPrompter{Answers: answers},
		env:      map[string]string{},
		project:  t.TempDir(),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(h.project, "app"), 0755))

	opts := configs.Defaults()
	opts.GitURL = repoURL
	opts.AppIdentifier = configs.List{appID}
	opts.FullName = "Jane Doe"
	opts.City = "Tallinn"
	opts.State = "Harju"
	opts.Country = "EE"
	opts.TargetDir = filepath.Join(h.project, "app")
	opts.KeystorePropertiesPath = filepath.Join(h.project, "keystore.properties")
	h.opts = &opts

	broker := password.NewBroker(h.prompter, logger.Discard())
	broker.Env = password.EnvSource{Lookup: func(k string) (string, bool) {
		v, ok := h.env[k]
		return v, ok
	}}
	h.session = workspace.NewSession(workspace.Config{
		Git:         h.git,
		Broker:      broker,
		Log:         logger.Discard(),
		TempRoot:    t.TempDir(),
		ToolVersion: toolVersion,
		Repassword:  KeystoreRepassword(h.keytool, appID),
	})
	t.Cleanup(h.session.Shutdown)

	h.trail = &audit.Trail{Path: filepath.Join(t.TempDir(), "audit.jsonl"), Session: "test-session"}
	return h
}

// seed pushes a versioned repository holding files encrypted with pw.
func (h *harness) seed(t *testing.T, pw string, files map[string]string) {
	t.Helper()
	tree := map[string]string{workspace.VersionFile: toolVersion}
	for rel, plaintext := range files {
		data, err := cipher.New().Seal([]byte(plaintext), pw)
		require.NoError(t, err)
		tree[rel] = string(data)
	}
	h.git.Seed("master", tree)
}

func (h *harness) remotePlaintext(t *testing.T, rel, pw string) string {
	t.Helper()
	plaintext, _, err := cipher.New().Open([]byte(h.git.RemoteFile(t, "master", rel)), pw, cipher.MD5)
	require.NoError(t, err)
	return string(plaintext)
}

func (h *harness) auditOps(t *testing.T) []string {
	t.Helper()
	entries, err := audit.ReadEntries(h.trail.Path)
	require.NoError(t, err)
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
	}
	return ops
}
