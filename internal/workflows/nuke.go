package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/cipher"
	"github.com/thorgate/flint/internal/configs"
	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/workspace"
)

// ConfirmFunc is asked before anything is deleted. files are absolute paths
// below root.
type ConfirmFunc func(root string, files []string) (bool, error)

// NukeOptions configures the nuke workflow.
type NukeOptions struct {
	Options *configs.Options
	// Type selects the keystores to delete: development or release.
	Type string
	// Confirm is skipped when Options.SkipConfirmation is set. A nil
	// Confirm refuses to delete anything.
	Confirm ConfirmFunc
	Log     logger.Logger
	Trail   *audit.Trail
}

// NukeResult contains the outcome of a nuke.
type NukeResult struct {
	// Files are the matching keystores, relative to the repository root.
	Files []string
	// Deleted is false when nothing matched or the user cancelled.
	Deleted   bool
	Cancelled bool
}

// NukeMessage returns the commit message of a nuke.
func NukeMessage(environment string) string {
	return fmt.Sprintf("[flint] Nuked files for %s", environment)
}

// Nuke deletes every keystore of one type from the repository and pushes
// the deletion.
//
// Returns ErrReadOnlyNuke when the options are read-only.
func Nuke(ctx context.Context, session *workspace.Session, opts NukeOptions) (*NukeResult, error) {
	o := opts.Options
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !slices.Contains(configs.Environments, opts.Type) {
		return nil, fmt.Errorf("%w: please run `flint nuke [type]`, allowed values: %s",
			ferrors.ErrInvalidOption, strings.Join(configs.Environments, ", "))
	}

	dir, err := session.Open(ctx, openOptions(o))
	if err != nil {
		return nil, err
	}

	opts.Log.Infof("Fetching keystores...")
	files, err := cipher.List(dir, "**/*-"+opts.Type+cipher.Extension)
	if err != nil {
		return nil, err
	}

	result := &NukeResult{}
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, filepath.ToSlash(rel))
	}

	if o.Readonly {
		return nil, ferrors.ErrReadOnlyNuke
	}
	if len(files) == 0 {
		session.Discard()
		return result, nil
	}

	if !o.SkipConfirmation {
		ok := false
		if opts.Confirm != nil {
			if ok, err = opts.Confirm(dir, files); err != nil {
				return nil, err
			}
		}
		if !ok {
			result.Cancelled = true
			session.Discard()
			return result, nil
		}
	}

	opts.Log.Infof("Deleting %d files from the git repo...", len(files))
	for _, f := range files {
		opts.Log.Infof("Deleting file '%s'...", filepath.Base(f))
		if err := os.Remove(f); err != nil {
			return nil, fmt.Errorf("deleting %s: %w", filepath.Base(f), err)
		}
	}

	err = session.Commit(ctx, workspace.CommitOptions{
		Message: NukeMessage(opts.Type),
		URL:     o.GitURL,
		Branch:  o.GitBranch,
	})
	if err != nil {
		return nil, err
	}
	result.Deleted = true

	opts.Trail.Log(auditEntry(o, "nuke", opts.Type, result.Files))
	return result, nil
}
