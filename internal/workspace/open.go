package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/thorgate/flint/internal/cipher"
	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/git"
	"github.com/thorgate/flint/internal/password"
)

// OpenOptions describes the repository to open.
type OpenOptions struct {
	URL    string
	Branch string

	Shallow             bool
	CloneBranchDirectly bool

	GitUserName  string
	GitUserEmail string

	// ManualPassword bypasses the broker. A wrong manual password is
	// fatal, and legacy detection is skipped.
	ManualPassword *string
}

func (o OpenOptions) identity() password.Identity {
	return password.NewIdentity(o.URL, o.Branch)
}

func (o OpenOptions) branch() string {
	return o.identity().Branch
}

// Open returns the decrypted workspace, cloning it first if none is open.
func (s *Session) Open(ctx context.Context, opts OpenOptions) (string, error) {
	if s.dir != "" {
		return s.dir, nil
	}

	migrated := false
	failures := 0
	for {
		if err := s.clone(ctx, opts); err != nil {
			return "", err
		}

		if !s.cfg.SkipMigration && opts.ManualPassword == nil && isLegacy(s.dir) {
			if migrated {
				s.Discard()
				return "", ferrors.ErrMigrationLoop
			}
			if err := s.migrate(ctx, opts); err != nil {
				return "", err
			}
			migrated = true
			continue
		}

		err := s.decrypt(opts)
		if err == nil {
			return s.dir, nil
		}
		s.Discard()

		if !errors.Is(err, ferrors.ErrDecryptFailed) {
			return "", err
		}
		if opts.ManualPassword != nil {
			return "", err
		}
		if s.cfg.Broker.FromEnvironment() {
			s.cfg.Log.Errorf("Couldn't decrypt the repo with the password from %s", password.EnvVar)
			return "", fmt.Errorf("%w: %w", ferrors.ErrInvalidEnvPassword, err)
		}

		failures++
		if failures >= s.cfg.MaxPasswordAttempts {
			return "", err
		}
		s.cfg.Log.Errorf("Couldn't decrypt the repo, please make sure you enter the right password!")
		s.cfg.Broker.Clear(opts.identity())
	}
}

func (s *Session) clone(ctx context.Context, opts OpenOptions) error {
	dir, err := os.MkdirTemp(s.cfg.TempRoot, "flint-")
	if err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}

	branch := opts.branch()
	cloneOpts := git.CloneOptions{Shallow: opts.Shallow}
	if !opts.Shallow && opts.CloneBranchDirectly {
		cloneOpts.Branch = branch
	}

	s.cfg.Log.Infof("Cloning remote git repo...")
	if !opts.CloneBranchDirectly {
		s.cfg.Log.Infof("If cloning the repo takes too long, you can use the clone_branch_directly option")
	}

	if err := s.cfg.Git.Clone(ctx, opts.URL, dir, cloneOpts); err != nil {
		os.RemoveAll(dir)
		s.cfg.Log.Errorf("Error cloning keystores repo, please make sure you have read access to the repository you want to use")
		return &ferrors.CloneError{
			URL:                 opts.URL,
			Branch:              branch,
			Command:             git.CloneCommand(opts.URL, dir, cloneOpts).String(),
			CloneBranchDirectly: opts.CloneBranchDirectly,
			Err:                 err,
		}
	}
	s.dir = dir

	if opts.GitUserName != "" || opts.GitUserEmail != "" {
		s.cfg.Log.Infof("Add git user config to local git repo...")
		if err := s.cfg.Git.ConfigureUser(ctx, dir, opts.GitUserName, opts.GitUserEmail); err != nil {
			s.Discard()
			return fmt.Errorf("configuring git user: %w", err)
		}
	}

	if branch != password.DefaultBranch {
		if err := s.checkout(ctx, branch); err != nil {
			s.Discard()
			return fmt.Errorf("%w %s: %w", ferrors.ErrCheckoutFailed, branch, err)
		}
	}
	return nil
}

// checkout switches to branch, creating it as an orphan when the remote does
// not have it so nothing from master leaks into it.
func (s *Session) checkout(ctx context.Context, branch string) error {
	s.cfg.Log.Infof("Checking out branch %s...", branch)

	exists, err := s.cfg.Git.RemoteBranchExists(s.dir, branch)
	if err != nil {
		return err
	}
	if exists {
		return s.cfg.Git.Checkout(ctx, s.dir, branch)
	}
	return s.cfg.Git.CheckoutOrphan(ctx, s.dir, branch)
}

type openedArtifact struct {
	path       string
	rel        string
	plaintext  []byte
	ciphertext []byte
}

// decrypt decrypts every artifact in memory and only writes the results
// once all of them succeeded.
func (s *Session) decrypt(opts OpenOptions) error {
	var pw string
	if opts.ManualPassword != nil {
		pw = *opts.ManualPassword
	} else {
		var err error
		if pw, err = s.cfg.Broker.Resolve(opts.identity()); err != nil {
			return err
		}
	}

	var opened []openedArtifact
	for path, err := range cipher.IterateArtifacts(s.dir) {
		if err != nil {
			return err
		}
		rel, err := s.rel(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		plaintext, res, err := s.cfg.Codec.Open(data, pw, cipher.MD5)
		if err != nil {
			return fmt.Errorf("decrypting %s: %w", rel, err)
		}
		if res.Attempts > 1 {
			s.cfg.Log.Debugf("%s was encrypted with %s", rel, res.Digest)
		}
		opened = append(opened, openedArtifact{path: path, rel: rel, plaintext: plaintext, ciphertext: data})
	}

	sealed := make(map[string]sealedRecord, len(opened))
	for _, a := range opened {
		if err := cipher.WriteFile(a.path, a.plaintext); err != nil {
			return err
		}
		sealed[a.rel] = sealedRecord{ciphertext: a.ciphertext, digest: blake2b.Sum256(a.plaintext)}
	}
	s.sealed = sealed

	s.cfg.Log.Infof("Successfully decrypted keystores repo")
	return nil
}

func (s *Session) rel(path string) (string, error) {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
