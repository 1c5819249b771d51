package keytool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
)

var subject = Subject{
	FullName:         "Jane Doe",
	Organization:     "Example, Inc",
	OrganizationUnit: "Mobile",
	City:             "Tallinn",
	State:            "Harjumaa",
	Country:          "EE",
}

func TestSubject(t *testing.T) {
	assert.Equal(t, `CN=Jane Doe, OU=Mobile, O=Example\, Inc, L=Tallinn, ST=Harjumaa, C=EE`, subject.DName())
	assert.NoError(t, subject.Validate())

	err := Subject{FullName: "x"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city, state, country")
}

func TestInvocations_KeepPasswordsOutOfArgs(t *testing.T) {
	invocations := []Invocation{
		GenerateInvocation(GenerateOptions{Path: "/w/certs/a.keystore", Alias: "a", Password: "s3cret", Subject: subject}),
		StorePasswdInvocation("/w/certs/a.keystore", "s3cret", "n3w"),
		KeyPasswdInvocation("/w/certs/a.keystore", "a", "s3cret", "n3w"),
		ListInvocation("/w/certs/a.keystore", "s3cret"),
	}
	for _, inv := range invocations {
		line := inv.String()
		assert.NotContains(t, line, "s3cret")
		assert.NotContains(t, line, "n3w")
		assert.Contains(t, line, "-storepass:env "+storePassEnv)
	}
}

func TestInvocationString_QuotesDName(t *testing.T) {
	inv := GenerateInvocation(GenerateOptions{Path: "/w/certs/a.keystore", Alias: "a", Password: "pw", Subject: subject})
	line := inv.String()
	assert.Contains(t, line, "keytool -genkey -v -keystore /w/certs/a.keystore -alias a")
	assert.Contains(t, line, "-dname '"+subject.DName()+"'")
}

func TestGenerateInvocation(t *testing.T) {
	inv := GenerateInvocation(GenerateOptions{Path: "ks", Alias: "app-release", Password: "pw", Subject: subject})
	assert.Equal(t, []string{
		"-genkey", "-v",
		"-keystore", "ks",
		"-alias", "app-release",
		"-keyalg", "RSA",
		"-keysize", "2048",
		"-validity", "10000",
		"-keypass:env", keyPassEnv,
		"-storepass:env", storePassEnv,
		"-dname", subject.DName(),
	}, inv.Args)
	assert.ElementsMatch(t, []string{keyPassEnv + "=pw", storePassEnv + "=pw"}, inv.Env)
}

func TestKeyPasswdInvocation_UsesNewStorePassword(t *testing.T) {
	inv := KeyPasswdInvocation("ks", "a", "old", "new")
	assert.Contains(t, inv.Env, storePassEnv+"=new")
	assert.Contains(t, inv.Env, keyPassEnv+"=old")
	assert.Contains(t, inv.Env, newPassEnv+"=new")
}

// fakeKeytool writes a shell script that logs its arguments and the store
// passphrase it received, then exits with FAKE_KEYTOOL_EXIT.
func fakeKeytool(t *testing.T) (*Tool, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake keytool needs a POSIX shell")
	}
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	script := filepath.Join(dir, "keytool")
	body := "#!/bin/sh\n" +
		"printf 'args:%s\\n' \"$*\" >> \"" + logPath + "\"\n" +
		"printf 'storepass:%s\\n' \"$" + storePassEnv + "\" >> \"" + logPath + "\"\n" +
		"echo 'Keystore type: PKCS12'\n" +
		"exit ${FAKE_KEYTOOL_EXIT:-0}\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	return &Tool{Log: logger.Discard(), Binary: script}, logPath
}

func TestTool_Generate(t *testing.T) {
	tool, logPath := fakeKeytool(t)
	ks := filepath.Join(t.TempDir(), "certs", "app-release.keystore")

	err := tool.Generate(context.Background(), GenerateOptions{Path: ks, Alias: "app-release", Password: "s3cret", Subject: subject})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Dir(ks))

	calls, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(calls), "args:-genkey -v -keystore "+ks)
	assert.Contains(t, string(calls), "storepass:s3cret")
}

func TestTool_GenerateRejectsIncompleteSubject(t *testing.T) {
	tool, logPath := fakeKeytool(t)
	err := tool.Generate(context.Background(), GenerateOptions{Path: filepath.Join(t.TempDir(), "a.keystore"), Password: "x"})
	require.Error(t, err)
	assert.NoFileExists(t, logPath)
}

func TestTool_List(t *testing.T) {
	tool, _ := fakeKeytool(t)
	out, err := tool.List(context.Background(), "ks", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Keystore type: PKCS12")
}

func TestTool_Failure(t *testing.T) {
	tool, _ := fakeKeytool(t)
	t.Setenv("FAKE_KEYTOOL_EXIT", "1")

	_, err := tool.List(context.Background(), "ks", "s3cret")
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrKeytoolFailed)

	var ktErr *Error
	require.True(t, errors.As(err, &ktErr))
	assert.Contains(t, ktErr.Output, "Keystore type")
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestTool_ChangePassword(t *testing.T) {
	tool, logPath := fakeKeytool(t)

	t.Run("MissingKeystoreSkipped", func(t *testing.T) {
		err := tool.ChangePassword(context.Background(), filepath.Join(t.TempDir(), "none.keystore"), "a", "old", "new")
		require.NoError(t, err)
		assert.NoFileExists(t, logPath)
	})

	t.Run("StoreThenKey", func(t *testing.T) {
		ks := filepath.Join(t.TempDir(), "a.keystore")
		require.NoError(t, os.WriteFile(ks, []byte("k"), 0600))

		require.NoError(t, tool.ChangePassword(context.Background(), ks, "a", "old", "new"))

		calls, err := os.ReadFile(logPath)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(calls)), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "args:-storepasswd"))
		assert.Equal(t, "storepass:old", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "args:-keypasswd"))
		assert.Equal(t, "storepass:new", lines[3])
	})
}
