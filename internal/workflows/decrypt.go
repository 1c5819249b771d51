package workflows

import (
	"context"
	"path/filepath"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/cipher"
	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/workspace"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	Options *configs.Options
	Trail   *audit.Trail
}

// DecryptResult contains the outcome of a decrypt.
type DecryptResult struct {
	// Path is the decrypted clone. It is not removed by the session.
	Path string
	// Artifacts are the decrypted keystores, relative to Path.
	Artifacts []string
}

// Decrypt clones and decrypts the repository and leaves it on disk. The
// caller is responsible for deleting Path.
func Decrypt(ctx context.Context, session *workspace.Session, opts DecryptOptions) (*DecryptResult, error) {
	o := opts.Options
	if err := o.Validate(); err != nil {
		return nil, err
	}

	dir, err := session.Open(ctx, openOptions(o))
	if err != nil {
		return nil, err
	}

	files, err := cipher.ListArtifacts(dir)
	if err != nil {
		return nil, err
	}
	result := &DecryptResult{}
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, filepath.ToSlash(rel))
	}
	result.Path = session.Detach()

	opts.Trail.Log(auditEntry(o, "decrypt", "", result.Artifacts))
	return result, nil
}
