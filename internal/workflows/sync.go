package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/configs"
	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/install"
	"github.com/thorgate/flint/internal/keytool"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/utils"
	"github.com/thorgate/flint/internal/workspace"
)

// SyncOptions configures the sync workflow.
type SyncOptions struct {
	Options *configs.Options
	Keytool Keytool
	Log     logger.Logger
	Trail   *audit.Trail
}

// SyncResult contains the outcome of a sync.
type SyncResult struct {
	// AppIdentifiers are the applications sharing the keystore.
	AppIdentifiers []string
	Type           string

	// Alias is the key alias, KeystoreName the file name of the keystore.
	Alias        string
	KeystoreName string

	// Generated is set when the keystore did not exist and was created and
	// pushed by this run.
	Generated bool

	// Installed reports whether the target directory holds the keystore.
	Installed  bool
	TargetPath string

	PropertiesPath string

	// Info is keytool's description of an existing keystore.
	Info string
}

// CommitMessage returns the message of the commit that adds a keystore.
func CommitMessage(environment string) string {
	return fmt.Sprintf("[flint] Updated %s and platform android", environment)
}

// Sync makes sure the keystore of the first configured application exists
// in the repository, installs it into the target directory and activates it
// in keystore.properties.
//
// A missing keystore is generated with keytool and pushed. The keystore and
// its key are protected with the repository passphrase.
//
// Returns ErrReadOnlyArtifactMissing if the keystore is missing and the
// options forbid creating it; nothing is generated or committed then.
func Sync(ctx context.Context, session *workspace.Session, opts SyncOptions) (*SyncResult, error) {
	o := opts.Options
	if err := o.Validate(); err != nil {
		return nil, err
	}
	ids, err := o.AppIdentifiers()
	if err != nil {
		return nil, err
	}

	dir, err := session.Open(ctx, openOptions(o))
	if err != nil {
		return nil, err
	}
	pw, err := session.Broker().Resolve(identity(o))
	if err != nil {
		return nil, err
	}

	alias := KeystoreAlias(ids[0], o.Type)
	certPath := keystorePath(dir, ids[0], o.Type)
	name := utils.KeystoreName(ids[0], o.Type)

	result := &SyncResult{
		AppIdentifiers: ids,
		Type:           o.Type,
		Alias:          alias,
		KeystoreName:   name,
		TargetPath:     filepath.Join(o.TargetDir, name),
		PropertiesPath: o.KeystorePropertiesPath,
	}

	installer := install.Installer{Log: opts.Log}
	props := install.Properties{StoreFile: name, KeyAlias: alias, Password: pw}

	_, err = os.Stat(certPath)
	switch {
	case os.IsNotExist(err):
		if o.Readonly {
			return nil, fmt.Errorf("%w: %s", ferrors.ErrReadOnlyArtifactMissing, name)
		}
		opts.Log.Warnf("Couldn't find a valid keystore in the git repo for %s... creating one for you now", o.Type)

		err := opts.Keytool.Generate(ctx, keytool.GenerateOptions{
			Path:     certPath,
			Alias:    alias,
			Password: pw,
			Subject:  o.Subject(),
		})
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", name, err)
		}
		result.Generated = true

		opts.Log.Infof("Installing keystore '%s'", name)
		if err := installer.Import(certPath, result.TargetPath); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("checking %s: %w", name, err)
	default:
		installed, err := installer.IsInstalled(certPath, result.TargetPath)
		if err != nil {
			return nil, err
		}
		if installed {
			opts.Log.Infof("Keystore '%s' is already installed on this machine", name)
		} else {
			opts.Log.Infof("Installing keystore '%s'", name)
			if err := installer.Import(certPath, result.TargetPath); err != nil {
				return nil, err
			}
		}

		info, err := opts.Keytool.List(ctx, certPath, pw)
		if err != nil {
			return nil, err
		}
		result.Info = info
	}

	if err := installer.Activate(o.KeystorePropertiesPath, props); err != nil {
		return nil, err
	}
	if result.Installed, err = installer.IsInstalled(certPath, result.TargetPath); err != nil {
		return nil, err
	}

	if !result.Generated {
		session.Discard()
		return result, nil
	}

	err = session.Commit(ctx, workspace.CommitOptions{
		Message: CommitMessage(o.Type),
		URL:     o.GitURL,
		Branch:  o.GitBranch,
		Files:   []string{certPath},
	})
	if err != nil {
		return nil, err
	}

	opts.Trail.Log(auditEntry(o, "sync", o.Type, []string{CertsDir + "/" + name}))
	return result, nil
}
