package git

import (
	"strings"

	"al.essio.dev/pkg/shellescape"
)

const noPromptEnv = "GIT_TERMINAL_PROMPT=0"

// Command is one git invocation.
type Command struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Args excludes the leading "git".
	Args []string
	// Env is appended to the process environment.
	Env []string
}

// String renders the command as a shell line, environment first.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	for _, kv := range c.Env {
		parts = append(parts, shellescape.Quote(kv))
	}
	parts = append(parts, "git")
	for _, a := range c.Args {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}

// CloneOptions controls how the repository is cloned.
type CloneOptions struct {
	// Shallow clones with --depth 1 --no-single-branch. It takes precedence
	// over Branch.
	Shallow bool
	// Branch, when set, clones only that branch with -b <branch> --single-branch.
	Branch string
}

// CloneCommand puts url and dir after "--" so a URL starting with a dash is
// not read as an option.
func CloneCommand(url, dir string, opts CloneOptions) Command {
	args := []string{"clone"}
	switch {
	case opts.Shallow:
		args = append(args, "--depth", "1", "--no-single-branch")
	case opts.Branch != "":
		args = append(args, "-b", opts.Branch, "--single-branch")
	}
	args = append(args, "--", url, dir)
	return Command{Args: args, Env: []string{noPromptEnv}}
}

func ConfigCommand(dir, key, value string) Command {
	return Command{Dir: dir, Args: []string{"config", key, value}}
}

func CheckoutCommand(dir, branch string) Command {
	return Command{Dir: dir, Args: []string{"checkout", branch}}
}

func CheckoutOrphanCommand(dir, branch string) Command {
	return Command{Dir: dir, Args: []string{"checkout", "--orphan", branch}}
}

func ResetHardCommand(dir string) Command {
	return Command{Dir: dir, Args: []string{"reset", "--hard"}}
}

// AddCommand stages a single path. The "--" keeps paths starting with a
// dash from being read as options.
func AddCommand(dir, path string) Command {
	return Command{Dir: dir, Args: []string{"add", "--", path}}
}

func AddAllCommand(dir string) Command {
	return Command{Dir: dir, Args: []string{"add", "-A"}}
}

func CommitCommand(dir, message string) Command {
	return Command{Dir: dir, Args: []string{"commit", "-m", message}}
}

// PushCommand pushes the current HEAD to branch on origin, which also works
// for a freshly created orphan branch.
func PushCommand(dir, branch string) Command {
	return Command{
		Dir:  dir,
		Args: []string{"push", "origin", "HEAD:" + branch},
		Env:  []string{noPromptEnv},
	}
}
