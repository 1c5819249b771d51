package workspace

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/thorgate/flint/internal/cipher"
	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/password"
)

// CommitOptions describes what to commit from the open workspace.
type CommitOptions struct {
	Message string
	URL     string
	Branch  string
	// Files lists the paths to stage, absolute or relative to the
	// workspace. Empty stages everything with `git add -A`.
	Files []string
	// Password seals new and changed artifacts instead of the passphrase
	// the broker resolves for URL.
	Password *string
}

// Commit encrypts the workspace, commits it and pushes it. Nothing happens
// when no artifact or other file changed. On success the workspace is
// closed; on a git failure it is detached from the session and a
// *errors.GitError names it.
func (s *Session) Commit(ctx context.Context, opts CommitOptions) error {
	if s.dir == "" {
		return ferrors.ErrNoWorkspace
	}
	dir := s.dir

	changed, err := s.cfg.Git.ChangedFiles(dir)
	if err != nil {
		return s.gitError("commit", err)
	}
	pending, err := s.pending(changed)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		s.cfg.Log.Infof("Nothing to commit")
		return nil
	}
	s.cfg.Log.Debugf("Pending changes: %s", strings.Join(pending, ", "))

	pw, err := s.commitPassword(opts)
	if err != nil {
		return err
	}
	if err := s.seal(pw); err != nil {
		return err
	}

	if len(opts.Files) > 0 {
		files, err := s.stageList(opts.Files)
		if err != nil {
			return err
		}
		if err := s.cfg.Git.Add(ctx, dir, files...); err != nil {
			return s.gitError("commit", err)
		}
	} else {
		if err := s.cfg.Git.AddAll(ctx, dir); err != nil {
			return s.gitError("commit", err)
		}
	}

	if err := s.cfg.Git.Commit(ctx, dir, opts.Message); err != nil {
		return s.gitError("commit", err)
	}

	s.cfg.Log.Infof("Pushing changes to remote git repo...")
	if err := s.cfg.Git.Push(ctx, dir, password.NewIdentity(opts.URL, opts.Branch).Branch); err != nil {
		return s.gitError("push", err)
	}

	s.cfg.Log.Infof("Finished uploading files to Git Repo")
	s.Close()
	return nil
}

// gitError detaches the workspace so that Shutdown leaves it on disk for
// the user to inspect.
func (s *Session) gitError(op string, err error) error {
	s.cfg.Log.Errorf("Couldn't commit or push changes back to git...")
	return &ferrors.GitError{Op: op, Workspace: s.Detach(), Err: err}
}

func (s *Session) commitPassword(opts CommitOptions) (string, error) {
	if opts.Password != nil {
		return *opts.Password, nil
	}
	return s.cfg.Broker.Resolve(password.NewIdentity(opts.URL, opts.Branch))
}

// pending drops artifacts that still hold the plaintext they were
// decrypted to from the changed paths reported by git.
func (s *Session) pending(changed []string) ([]string, error) {
	var out []string
	for _, rel := range changed {
		rec, ok := s.sealed[rel]
		if !ok {
			out = append(out, rel)
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
		if os.IsNotExist(err) {
			out = append(out, rel)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		if blake2b.Sum256(data) != rec.digest {
			out = append(out, rel)
		}
	}
	return out, nil
}

// seal encrypts every artifact in the workspace. Unchanged artifacts get
// their original ciphertext back.
func (s *Session) seal(pw string) error {
	type sealedArtifact struct {
		path string
		data []byte
	}

	var out []sealedArtifact
	for path, err := range cipher.IterateArtifacts(s.dir) {
		if err != nil {
			return err
		}
		rel, err := s.rel(path)
		if err != nil {
			return err
		}
		plaintext, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		if rec, ok := s.sealed[rel]; ok && blake2b.Sum256(plaintext) == rec.digest {
			out = append(out, sealedArtifact{path: path, data: bytes.Clone(rec.ciphertext)})
			continue
		}

		s.cfg.Log.Debugf("Encrypting %s", rel)
		data, err := s.cfg.Codec.Seal(plaintext, pw)
		if err != nil {
			return fmt.Errorf("encrypting %s: %w", rel, err)
		}
		out = append(out, sealedArtifact{path: path, data: data})
	}

	for _, a := range out {
		if err := cipher.WriteFile(a.path, a.data); err != nil {
			return err
		}
	}
	// The tree is encrypted now; a second seal must not mistake ciphertext
	// for unchanged plaintext.
	s.sealed = nil
	return nil
}

// stageList returns files relative to the workspace plus the metadata files
// that were written for this commit.
func (s *Session) stageList(files []string) ([]string, error) {
	out := make([]string, 0, len(files)+2)
	for _, f := range files {
		if filepath.IsAbs(f) {
			rel, err := s.rel(f)
			if err != nil {
				return nil, err
			}
			f = rel
		}
		out = append(out, filepath.ToSlash(f))
	}

	wrote, err := writeVersion(s.dir, s.cfg.ToolVersion)
	if err != nil {
		return nil, err
	}
	if wrote {
		out = append(out, VersionFile)
	}

	if !s.cfg.SkipDocs {
		wrote, err := writeReadme(s.dir)
		if err != nil {
			return nil, err
		}
		if wrote {
			out = append(out, ReadmeFile)
		}
	}
	return out, nil
}
