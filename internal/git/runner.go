package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	logger "github.com/thorgate/flint/internal/logging"
)

// Available reports whether the git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Runner executes git commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout string, err error)
}

// RunError is returned when git exits with a non-zero status or cannot be
// started.
type RunError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("`%s` failed (exit code %d): %s", e.Command, e.ExitCode, msg)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ExecRunner runs the git executable.
type ExecRunner struct {
	Log logger.Logger
	// Binary defaults to "git".
	Binary string
}

func (r ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	r.Log.Infof("Running git command: %s", c)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), c.Env...)

	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		r.Log.Debugf("%s", out)
	}
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		r.Log.Debugf("%s", strings.TrimSpace(stderr.String()))
		return stdout.String(), &RunError{
			Command:  c.String(),
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
