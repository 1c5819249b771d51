package install

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"golang.org/x/crypto/blake2b"

	logger "github.com/thorgate/flint/internal/logging"
)

//go:embed templates/keystore.properties.tmpl
var propertiesTemplate string

var properties = template.Must(template.New("keystore.properties").Parse(propertiesTemplate))

// Installer places keystores into a project.
type Installer struct {
	Log logger.Logger
}

// IsInstalled reports whether target exists with the same content as src.
func (i Installer) IsInstalled(src, target string) (bool, error) {
	want, err := digest(src)
	if err != nil {
		return false, err
	}
	got, err := digest(target)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// Import copies src to target. When the target directory does not exist the
// copy is skipped, so running outside a project only syncs the repository.
func (i Installer) Import(src, target string) error {
	if info, err := os.Stat(filepath.Dir(target)); err != nil || !info.IsDir() {
		i.Log.Warnf("Target directory %s does not exist, not installing %s", filepath.Dir(target), filepath.Base(target))
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", target, err)
	}
	return out.Close()
}

// Properties fills keystore.properties.
type Properties struct {
	StoreFile string
	KeyAlias  string
	Password  string
}

// Activate writes keystore.properties at path.
func (i Installer) Activate(path string, p Properties) error {
	var b bytes.Buffer
	if err := properties.Execute(&b, p); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	i.Log.Infof("Wrote %s", path)
	return nil
}

func digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
