package keytool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"

	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
)

const (
	// DefaultValidityDays is a little over 27 years.
	DefaultValidityDays = 10000

	storePassEnv = "FLINT_KEYTOOL_STOREPASS"
	keyPassEnv   = "FLINT_KEYTOOL_KEYPASS"
	newPassEnv   = "FLINT_KEYTOOL_NEWPASS"
)

// Available reports whether keytool is on PATH.
func Available() bool {
	_, err := exec.LookPath("keytool")
	return err == nil
}

// Subject is the distinguished name written into generated certificates.
type Subject struct {
	FullName         string
	Organization     string
	OrganizationUnit string
	City             string
	State            string
	Country          string
}

// Validate reports the fields keytool needs that are missing.
func (s Subject) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", s.FullName},
		{"city", s.City},
		{"state", s.State},
		{"country", s.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("certificate subject is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// DName renders the subject in X.500 form.
func (s Subject) DName() string {
	return fmt.Sprintf("CN=%s, OU=%s, O=%s, L=%s, ST=%s, C=%s",
		escapeDN(s.FullName), escapeDN(s.OrganizationUnit), escapeDN(s.Organization),
		escapeDN(s.City), escapeDN(s.State), escapeDN(s.Country))
}

func escapeDN(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Invocation is one keytool run. Env carries the passphrases.
type Invocation struct {
	Args []string
	Env  []string
}

// String renders the invocation as a shell command line. Passphrases are
// not part of it.
func (i Invocation) String() string {
	return shellescape.QuoteCommand(append([]string{"keytool"}, i.Args...))
}

// GenerateOptions describes a new keystore.
type GenerateOptions struct {
	Path     string
	Alias    string
	Password string
	Subject  Subject
	// ValidityDays defaults to DefaultValidityDays.
	ValidityDays int
}

func GenerateInvocation(opts GenerateOptions) Invocation {
	days := opts.ValidityDays
	if days <= 0 {
		days = DefaultValidityDays
	}
	return Invocation{
		Args: []string{
			"-genkey", "-v",
			"-keystore", opts.Path,
			"-alias", opts.Alias,
			"-keyalg", "RSA",
			"-keysize", "2048",
			"-validity", strconv.Itoa(days),
			"-keypass:env", keyPassEnv,
			"-storepass:env", storePassEnv,
			"-dname", opts.Subject.DName(),
		},
		Env: []string{keyPassEnv + "=" + opts.Password, storePassEnv + "=" + opts.Password},
	}
}

func StorePasswdInvocation(path, from, to string) Invocation {
	return Invocation{
		Args: []string{"-storepasswd", "-v", "-keystore", path, "-storepass:env", storePassEnv, "-new:env", newPassEnv},
		Env:  []string{storePassEnv + "=" + from, newPassEnv + "=" + to},
	}
}

func KeyPasswdInvocation(path, alias, from, to string) Invocation {
	return Invocation{
		Args: []string{"-keypasswd", "-v", "-keystore", path, "-alias", alias,
			"-keypass:env", keyPassEnv, "-storepass:env", storePassEnv, "-new:env", newPassEnv},
		// The store passphrase was changed by the preceding -storepasswd.
		Env: []string{keyPassEnv + "=" + from, storePassEnv + "=" + to, newPassEnv + "=" + to},
	}
}

func ListInvocation(path, password string) Invocation {
	return Invocation{
		Args: []string{"-list", "-v", "-keystore", path, "-storepass:env", storePassEnv},
		Env:  []string{storePassEnv + "=" + password},
	}
}

// Error is returned when keytool exits with a non-zero status.
type Error struct {
	Command string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("`%s` failed: %v\n%s", e.Command, e.Err, strings.TrimSpace(e.Output))
}

func (e *Error) Unwrap() []error {
	return []error{ferrors.ErrKeytoolFailed, e.Err}
}

// Tool runs keytool.
type Tool struct {
	Log logger.Logger
	// Binary defaults to "keytool".
	Binary string
}

func New(log logger.Logger) *Tool {
	return &Tool{Log: log}
}

func (t *Tool) run(ctx context.Context, inv Invocation) (string, error) {
	binary := t.Binary
	if binary == "" {
		binary = "keytool"
	}
	t.Log.Infof("Running %s", inv)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, inv.Args...)
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), &Error{Command: inv.String(), Output: out.String(), Err: err}
	}
	return out.String(), nil
}

// Generate creates a new keystore holding one RSA key.
func (t *Tool) Generate(ctx context.Context, opts GenerateOptions) error {
	if err := opts.Subject.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(opts.Path), err)
	}
	_, err := t.run(ctx, GenerateInvocation(opts))
	return err
}

// ChangePassword re-keys the store and the key alias inside it. A missing
// keystore is skipped.
func (t *Tool) ChangePassword(ctx context.Context, path, alias, from, to string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Log.Infof("Keystore %s does not exist, skipping", path)
		return nil
	}
	if _, err := t.run(ctx, StorePasswdInvocation(path, from, to)); err != nil {
		return err
	}
	_, err := t.run(ctx, KeyPasswdInvocation(path, alias, from, to))
	return err
}

// List returns keytool's verbose description of the keystore.
func (t *Tool) List(ctx context.Context, path, password string) (string, error) {
	return t.run(ctx, ListInvocation(path, password))
}
