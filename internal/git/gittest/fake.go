// Package gittest provides an in-memory git.Client for tests.
package gittest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thorgate/flint/internal/git"
)

// Fake implements git.Client on plain directories. The remote keeps one
// file tree per branch; a clone remembers the tree it last committed.
type Fake struct {
	remote map[string]map[string][]byte
	clones map[string]*fakeClone

	// CloneErr and PushErr make the corresponding call fail.
	CloneErr error
	PushErr  error
	// DropPushes accepts pushes without updating the remote.
	DropPushes bool

	CloneCount int
	// Calls records every operation, e.g. "add certs/a.keystore".
	Calls []string
}

type fakeClone struct {
	branch string
	head   map[string][]byte
	staged map[string]bool
}

var _ git.Client = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		remote: map[string]map[string][]byte{},
		clones: map[string]*fakeClone{},
	}
}

// Seed replaces the remote tree of branch.
func (f *Fake) Seed(branch string, files map[string]string) {
	tree := map[string][]byte{}
	for k, v := range files {
		tree[k] = []byte(v)
	}
	f.remote[branch] = tree
}

func (f *Fake) snapshot(branch string) map[string][]byte {
	tree := maps.Clone(f.remote[branch])
	if tree == nil {
		tree = map[string][]byte{}
	}
	return tree
}

func (f *Fake) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// Mutations returns the recorded calls that change the repository.
func (f *Fake) Mutations() []string {
	var out []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, "add") || strings.HasPrefix(c, "commit") || strings.HasPrefix(c, "push") {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Clone(_ context.Context, url, dir string, opts git.CloneOptions) error {
	f.CloneCount++
	f.record("clone %s", url)
	if f.CloneErr != nil {
		return f.CloneErr
	}
	branch := "master"
	if opts.Branch != "" {
		branch = opts.Branch
		if _, ok := f.remote[branch]; !ok {
			return errors.New("remote branch not found")
		}
	}
	tree := f.snapshot(branch)
	if err := writeTree(dir, tree); err != nil {
		return err
	}
	f.clones[dir] = &fakeClone{branch: branch, head: tree, staged: map[string]bool{}}
	return nil
}

func (f *Fake) ConfigureUser(_ context.Context, _, name, email string) error {
	f.record("config %s <%s>", name, email)
	return nil
}

func (f *Fake) RemoteBranchExists(_, branch string) (bool, error) {
	_, ok := f.remote[branch]
	return ok, nil
}

func (f *Fake) Checkout(_ context.Context, dir, branch string) error {
	f.record("checkout %s", branch)
	tree := f.snapshot(branch)
	if err := resetTree(dir, tree); err != nil {
		return err
	}
	f.clones[dir] = &fakeClone{branch: branch, head: tree, staged: map[string]bool{}}
	return nil
}

func (f *Fake) CheckoutOrphan(_ context.Context, dir, branch string) error {
	f.record("orphan %s", branch)
	if err := resetTree(dir, nil); err != nil {
		return err
	}
	f.clones[dir] = &fakeClone{branch: branch, head: map[string][]byte{}, staged: map[string]bool{}}
	return nil
}

func (f *Fake) ChangedFiles(dir string) ([]string, error) {
	c := f.clones[dir]
	disk, err := readTree(dir)
	if err != nil {
		return nil, err
	}
	var changed []string
	for p, data := range disk {
		if old, ok := c.head[p]; !ok || string(old) != string(data) {
			changed = append(changed, p)
		}
	}
	for p := range c.head {
		if _, ok := disk[p]; !ok {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

func (f *Fake) Add(_ context.Context, dir string, paths ...string) error {
	for _, p := range paths {
		f.record("add %s", p)
		f.clones[dir].staged[p] = true
	}
	return nil
}

func (f *Fake) AddAll(_ context.Context, dir string) error {
	f.record("add -A")
	changed, err := f.ChangedFiles(dir)
	if err != nil {
		return err
	}
	for _, p := range changed {
		f.clones[dir].staged[p] = true
	}
	return nil
}

func (f *Fake) Commit(_ context.Context, dir, message string) error {
	f.record("commit %s", message)
	c := f.clones[dir]
	if len(c.staged) == 0 {
		return errors.New("nothing to commit")
	}
	for p := range c.staged {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if os.IsNotExist(err) {
			delete(c.head, p)
			continue
		}
		if err != nil {
			return err
		}
		c.head[p] = data
	}
	c.staged = map[string]bool{}
	return nil
}

func (f *Fake) Push(_ context.Context, dir, branch string) error {
	f.record("push %s", branch)
	if f.PushErr != nil {
		return f.PushErr
	}
	if !f.DropPushes {
		f.remote[branch] = maps.Clone(f.clones[dir].head)
	}
	return nil
}

// RemoteFile returns a file from the remote tree of branch.
func (f *Fake) RemoteFile(t testing.TB, branch, path string) string {
	t.Helper()
	data, ok := f.remote[branch][path]
	require.True(t, ok, "%s missing on remote branch %s", path, branch)
	return string(data)
}

// RemoteFiles lists the remote tree of branch.
func (f *Fake) RemoteFiles(branch string) []string {
	return slices.Sorted(maps.Keys(f.remote[branch]))
}

func writeTree(dir string, tree map[string][]byte) error {
	for p, data := range tree {
		path := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func resetTree(dir string, tree map[string][]byte) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return writeTree(dir, tree)
}

func readTree(dir string) (map[string][]byte, error) {
	tree := map[string][]byte{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = data
		return nil
	})
	return tree, err
}
