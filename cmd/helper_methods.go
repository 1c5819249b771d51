package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/audit"
	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/git"
	"github.com/thorgate/flint/internal/password"
	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/workspace"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode, and when no passphrase prompt can interrupt it.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(w io.Writer, message string, enabled bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	active := enabled && !verbose && !debug
	if active {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if active {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(w, finalMsg)
		}
	}

	return s, cleanup
}

// loadOptions layers the Flintfile, the environment and the flags of cmd.
func loadOptions(cmd *cobra.Command) (*configs.Options, error) {
	opts, err := configs.Load(cmd.Context(), configs.LoadOptions{
		Flags: cmd.Flags(),
		Log:   Logger,
	})
	if err != nil {
		return nil, err
	}
	if opts.Verbose && !Logger.Verbose {
		Logger.Verbose = true
	}
	if opts.Source != "" {
		Logger.Infof("Using options from %s", opts.Source)
	}
	return opts, nil
}

// signalContext returns a context that is cancelled on Ctrl-C, so that a
// deferred Session.Shutdown still removes the decrypted workspace.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// newSession wires a workspace session to the git binary and the terminal.
func newSession(opts *configs.Options, repassword workspace.RepasswordFunc) (*workspace.Session, error) {
	if !git.Available() {
		return nil, fmt.Errorf("git is not installed or not on PATH")
	}
	broker := password.NewBroker(password.TerminalPrompter{}, Logger)
	return workspace.NewSession(workspace.Config{
		Git:         git.NewCLI(Logger),
		Broker:      broker,
		Log:         Logger,
		ToolVersion: Version,
		Repassword:  repassword,
		SkipDocs:    opts.SkipDocs,
	}), nil
}

var trail = audit.NewTrail()
