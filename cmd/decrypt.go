package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/utils"
	"github.com/thorgate/flint/internal/workflows"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt the repository and keep it on the filesystem",
	Long: `Clones and decrypts the keystores repository and leaves the decrypted copy on
disk so you can inspect it. Delete the directory once you are done; it holds
your keystores in plaintext.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		session, err := newSession(opts, nil)
		if err != nil {
			return err
		}
		defer session.Shutdown()

		spinner, cleanup := startSpinner(cmd.OutOrStdout(), "Decrypting keystores...", session.Broker().FromEnvironment())
		defer cleanup()

		result, err := workflows.Decrypt(ctx, session, workflows.DecryptOptions{
			Options: opts,
			Trail:   trail,
		})
		if err != nil {
			return err
		}

		msg := ui.CheckMark() + " Repo is at: " + ui.Path.Sprint(result.Path) + "\n"
		if len(result.Artifacts) > 0 {
			msg += "Decrypted keystores:" + utils.FormatPaths(result.Artifacts)
		}
		spinner.FinalMSG = msg + ui.Arrow() + " Delete the directory when you are done"
		return nil
	},
}
