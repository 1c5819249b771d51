package cipher

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Extension is the file extension of keystore artifacts.
const Extension = ".keystore"

// ArtifactPattern matches every artifact below a root.
const ArtifactPattern = "**/*" + Extension

var errStopIteration = errors.New("stop iteration")

// IterateArtifacts lazily yields the paths of all regular .keystore files
// below root. Every call walks the disk again.
func IterateArtifacts(root string) iter.Seq2[string, error] {
	return Match(root, ArtifactPattern)
}

// Match lazily yields the paths of regular files below root matching the
// doublestar pattern. Directories, irregular files and anything inside .git
// are skipped.
func Match(root, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := doublestar.GlobWalk(os.DirFS(root), pattern, func(p string, d fs.DirEntry) error {
			if d.IsDir() || !d.Type().IsRegular() || inGitDir(p) {
				return nil
			}
			if !yield(filepath.Join(root, filepath.FromSlash(p)), nil) {
				stopped = true
				return errStopIteration
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("walking %s: %w", root, err))
		}
	}
}

// ListArtifacts collects IterateArtifacts into a sorted slice.
func ListArtifacts(root string) ([]string, error) {
	return List(root, ArtifactPattern)
}

// List collects Match into a sorted slice.
func List(root, pattern string) ([]string, error) {
	var out []string
	for p, err := range Match(root, pattern) {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func inGitDir(p string) bool {
	return p == ".git" || strings.HasPrefix(p, ".git/")
}

// WriteFile atomically replaces path with data, keeping the existing file
// mode. New files get 0600.
func WriteFile(path string, data []byte) error {
	perm := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
