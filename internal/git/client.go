package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	logger "github.com/thorgate/flint/internal/logging"
)

// Client is the set of git operations the workspace needs.
type Client interface {
	Clone(ctx context.Context, url, dir string, opts CloneOptions) error
	ConfigureUser(ctx context.Context, dir, name, email string) error
	RemoteBranchExists(dir, branch string) (bool, error)
	Checkout(ctx context.Context, dir, branch string) error
	CheckoutOrphan(ctx context.Context, dir, branch string) error
	// ChangedFiles lists slash-separated paths that differ from HEAD,
	// untracked files included.
	ChangedFiles(dir string) ([]string, error)
	Add(ctx context.Context, dir string, paths ...string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	Push(ctx context.Context, dir, branch string) error
}

// CLI implements Client with the git binary and go-git.
type CLI struct {
	Runner Runner
}

// NewCLI returns a client running the git binary found on PATH.
func NewCLI(log logger.Logger) *CLI {
	return &CLI{Runner: ExecRunner{Log: log}}
}

func (c *CLI) run(ctx context.Context, cmd Command) error {
	_, err := c.Runner.Run(ctx, cmd)
	return err
}

func (c *CLI) Clone(ctx context.Context, url, dir string, opts CloneOptions) error {
	return c.run(ctx, CloneCommand(url, dir, opts))
}

func (c *CLI) ConfigureUser(ctx context.Context, dir, name, email string) error {
	if name != "" {
		if err := c.run(ctx, ConfigCommand(dir, "user.name", name)); err != nil {
			return err
		}
	}
	if email != "" {
		if err := c.run(ctx, ConfigCommand(dir, "user.email", email)); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) RemoteBranchExists(dir, branch string) (bool, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", dir, err)
	}
	_, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolving origin/%s: %w", branch, err)
	}
	return true, nil
}

func (c *CLI) Checkout(ctx context.Context, dir, branch string) error {
	return c.run(ctx, CheckoutCommand(dir, branch))
}

// CheckoutOrphan starts a new history for branch with an empty tree.
func (c *CLI) CheckoutOrphan(ctx context.Context, dir, branch string) error {
	if err := c.run(ctx, CheckoutOrphanCommand(dir, branch)); err != nil {
		return err
	}
	return c.run(ctx, ResetHardCommand(dir))
}

func (c *CLI) ChangedFiles(dir string) ([]string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	var changed []string
	for path, s := range status {
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		changed = append(changed, filepath.ToSlash(path))
	}
	sort.Strings(changed)
	return changed, nil
}

func (c *CLI) Add(ctx context.Context, dir string, paths ...string) error {
	for _, p := range paths {
		if err := c.run(ctx, AddCommand(dir, p)); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) AddAll(ctx context.Context, dir string) error {
	return c.run(ctx, AddAllCommand(dir))
}

func (c *CLI) Commit(ctx context.Context, dir, message string) error {
	return c.run(ctx, CommitCommand(dir, message))
}

func (c *CLI) Push(ctx context.Context, dir, branch string) error {
	return c.run(ctx, PushCommand(dir, branch))
}
