package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thorgate/flint/internal/configs"
	ferrors "github.com/thorgate/flint/internal/errors"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/ui"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// Version is written into the repository's version marker.
	Version = "0.0.0"

	FlintCmd = &cobra.Command{
		Use:   "flint [development|release]",
		Short: "Sync your Android keystores across your team using git",
		Long: `Flint keeps the Android signing keystores of a team in one git repository,
encrypted with a shared passphrase.

Running flint without a subcommand is the same as running flint sync.

Options are read from a Flintfile (in the current directory or its fastlane/
subdirectory), then from FLINT_* environment variables, then from flags.
The passphrase is read from FLINT_PASSWORD, or asked for on the terminal.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     configs.Environments,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
				Out:     cmd.OutOrStdout(),
				Err:     cmd.ErrOrStderr(),
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		RunE: runSync,
	}
)

func init() {
	FlintCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	FlintCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	configs.RegisterFlags(FlintCmd.PersistentFlags())

	FlintCmd.AddCommand(syncCmd)
	for _, env := range configs.Environments {
		FlintCmd.AddCommand(newEnvironmentCmd(env))
	}
	FlintCmd.AddCommand(nukeCmd)
	FlintCmd.AddCommand(decryptCmd)
	FlintCmd.AddCommand(changePasswordCmd)
	FlintCmd.AddCommand(setupCmd)
}

// Execute runs the flint command line and returns the process exit code.
func Execute(version string) int {
	if version != "" {
		Version = version
		FlintCmd.Version = version
	}
	if err := FlintCmd.Execute(); err != nil {
		printError(FlintCmd, err)
		return 1
	}
	return 0
}

// printError reports err with its remediation hint, if any.
func printError(cmd *cobra.Command, err error) {
	msg := ui.CrossMark() + " " + err.Error() + "\n"
	if hint := ferrors.Remediation(err); hint != "" {
		msg += ui.Arrow() + " " + hint + "\n"
	}
	fmt.Fprint(cmd.ErrOrStderr(), msg)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}
	FlintCmd.SetArgs(nil)
	resetFlags(FlintCmd)
}

func resetFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().VisitAll(resetFlag)
	cmd.Flags().VisitAll(resetFlag)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func resetFlag(f *pflag.Flag) {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		_ = sv.Replace(nil)
	} else {
		_ = f.Value.Set(f.DefValue)
	}
	f.Changed = false
}
