package workflows

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thorgate/flint/internal/configs"
	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/utils"
)

// SetupOptions configures the setup workflow.
type SetupOptions struct {
	// Dir is the project directory. The Flintfile is written to its
	// fastlane/ subdirectory when there is one.
	Dir string
	// Options are written to the Flintfile; empty values are left out.
	Options configs.Options
}

// SetupResult contains the outcome of a setup.
type SetupResult struct {
	Path string
}

// Setup writes a starter Flintfile.
//
// Returns ErrFlintfileExists if there already is one.
func Setup(opts SetupOptions) (*SetupResult, error) {
	if strings.TrimSpace(opts.Options.GitURL) == "" {
		return nil, fmt.Errorf("%w: git_url is required", ferrors.ErrInvalidOption)
	}

	dir := opts.Dir
	if info, err := os.Stat(filepath.Join(dir, "fastlane")); err == nil && info.IsDir() {
		dir = filepath.Join(dir, "fastlane")
	}
	path := filepath.Join(dir, utils.FlintfileName)

	if err := configs.SaveTOML(path, configs.FlintfileHeader, opts.Options); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ferrors.ErrFlintfileExists, path)
		}
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return &SetupResult{Path: path}, nil
}
