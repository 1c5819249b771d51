package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/thorgate/flint/internal/logging"
)

func TestInstaller_ImportAndIsInstalled(t *testing.T) {
	inst := Installer{Log: logger.Discard()}
	src := filepath.Join(t.TempDir(), "app-release.keystore")
	require.NoError(t, os.WriteFile(src, []byte("keystore bytes"), 0600))
	target := filepath.Join(t.TempDir(), "app-release.keystore")

	installed, err := inst.IsInstalled(src, target)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, inst.Import(src, target))
	installed, err = inst.IsInstalled(src, target)
	require.NoError(t, err)
	assert.True(t, installed)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(target, []byte("stale"), 0600))
	installed, err = inst.IsInstalled(src, target)
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestInstaller_ImportMissingTargetDir(t *testing.T) {
	inst := Installer{Log: logger.Discard()}
	src := filepath.Join(t.TempDir(), "a.keystore")
	require.NoError(t, os.WriteFile(src, []byte("k"), 0600))

	target := filepath.Join(t.TempDir(), "missing", "a.keystore")
	require.NoError(t, inst.Import(src, target))
	assert.NoFileExists(t, target)
}

func TestInstaller_Activate(t *testing.T) {
	inst := Installer{Log: logger.Discard()}
	path := filepath.Join(t.TempDir(), "keystore.properties")

	err := inst.Activate(path, Properties{StoreFile: "com_example-release.keystore", KeyAlias: "com_example-release", Password: "pw"})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Generated by flint. Do not commit this file.\n"+
		"storeFile=com_example-release.keystore\n"+
		"storePassword=pw\n"+
		"keyAlias=com_example-release\n"+
		"keyPassword=pw\n", string(b))
}
