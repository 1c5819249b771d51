package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/keytool"
	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/workflows"
)

var syncCmd = &cobra.Command{
	Use:   "sync [development|release]",
	Short: "Fetch, or create, the keystore of your app and install it",
	Long: `Clones the keystores repository, decrypts it and installs the keystore of the
first configured app identifier into the target directory. keystore.properties
is rewritten to point at it.

When the repository has no keystore for the requested type yet, one is
generated with keytool and pushed, unless --readonly is set.

Examples:
  # Install the development keystore
  flint sync development

  # CI: never create anything, read the passphrase from FLINT_PASSWORD
  FLINT_PASSWORD=... flint sync release --readonly`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: configs.Environments,
	RunE:      runSync,
}

func newEnvironmentCmd(env string) *cobra.Command {
	return &cobra.Command{
		Use:   env,
		Short: fmt.Sprintf("Run flint sync for the %s keystore", env),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, []string{env})
		},
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting sync command")
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		opts.Type = args[0]
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if !keytool.Available() {
		Logger.Warnf("keytool was not found on PATH; creating or listing keystores will fail")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	session, err := newSession(opts, nil)
	if err != nil {
		return err
	}
	defer session.Shutdown()

	out := cmd.OutOrStdout()
	spinner, cleanup := startSpinner(out, "Syncing keystores...", session.Broker().FromEnvironment())
	result, err := workflows.Sync(ctx, session, workflows.SyncOptions{
		Options: opts,
		Keytool: keytool.New(Logger),
		Log:     Logger,
		Trail:   trail,
	})
	if err != nil {
		cleanup()
		return err
	}

	msg := ui.CheckMark() + " Keystore " + ui.Highlight.Sprint(result.KeystoreName) + " is up to date"
	if result.Generated {
		msg = ui.CheckMark() + " Created keystore " + ui.Highlight.Sprint(result.KeystoreName) + " and pushed it to " + ui.Highlight.Sprint(opts.GitURL)
	}
	if !result.Installed {
		msg += "\n" + ui.Warning.Sprint("⚠") + " Not installed, " + ui.Path.Sprint(opts.TargetDir) + " does not exist"
	}
	spinner.FinalMSG = msg
	cleanup()

	if result.Info != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Info)
	}

	for _, id := range result.AppIdentifiers {
		fmt.Fprintln(out)
		if err := ui.PrintKeystoreSummary(out, ui.KeystoreSummary{
			AppIdentifier: id,
			Type:          result.Type,
			Keystore:      result.Alias,
		}); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Success.Sprint("All required keystores are installed 🙌"))
	return nil
}
