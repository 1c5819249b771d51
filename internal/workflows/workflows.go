package workflows

import (
	"context"
	"path/filepath"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/keytool"
	"github.com/thorgate/flint/internal/password"
	"github.com/thorgate/flint/internal/utils"
	"github.com/thorgate/flint/internal/workspace"
)

// CertsDir is the repository directory keystores are kept in.
const CertsDir = "certs"

// Keytool is the keystore tool the workflows drive.
type Keytool interface {
	Generate(ctx context.Context, opts keytool.GenerateOptions) error
	ChangePassword(ctx context.Context, path, alias, from, to string) error
	List(ctx context.Context, path, password string) (string, error)
}

var _ Keytool = (*keytool.Tool)(nil)

// KeystoreAlias returns the key alias of an application's keystore,
// e.g. com_example_app-release.
func KeystoreAlias(appID, environment string) string {
	return utils.SanitizeIdentifier(appID) + "-" + environment
}

func keystorePath(dir, appID, environment string) string {
	return filepath.Join(dir, CertsDir, utils.KeystoreName(appID, environment))
}

func openOptions(o *configs.Options) workspace.OpenOptions {
	return workspace.OpenOptions{
		URL:                 o.GitURL,
		Branch:              o.GitBranch,
		Shallow:             o.ShallowClone,
		CloneBranchDirectly: o.CloneBranchDirectly,
		GitUserName:         o.GitFullName,
		GitUserEmail:        o.GitUserEmail,
	}
}

func identity(o *configs.Options) password.Identity {
	return password.NewIdentity(o.GitURL, o.GitBranch)
}

func auditEntry(o *configs.Options, op, environment string, files []string) audit.Entry {
	return audit.Entry{
		Operation: op,
		Repo:      o.GitURL,
		Branch:    identity(o).Branch,
		Type:      environment,
		Files:     files,
	}
}

// KeystoreRepassword returns the hook that re-keys the keystores of appID
// during a passphrase rotation. Each keystore's store and key passwords
// follow the repository passphrase.
func KeystoreRepassword(tool Keytool, appID string) workspace.RepasswordFunc {
	return func(ctx context.Context, dir, from, to string) error {
		for _, env := range configs.Environments {
			path := keystorePath(dir, appID, env)
			if err := tool.ChangePassword(ctx, path, KeystoreAlias(appID, env), from, to); err != nil {
				return err
			}
		}
		return nil
	}
}
