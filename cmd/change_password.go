package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/keytool"
	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/workflows"
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Re-encrypt the repository with a new passphrase",
	Long: `Asks for the current and a new passphrase, re-encrypts every keystore in the
repository with the new one and pushes the result. The store and key
passwords of your app's keystores are changed to the new passphrase too.

Everyone using the repository needs the new passphrase afterwards. This
command only works from an interactive terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting change-password command")
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		ids, err := opts.AppIdentifiers()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		session, err := newSession(opts, workflows.KeystoreRepassword(keytool.New(Logger), ids[0]))
		if err != nil {
			return err
		}
		defer session.Shutdown()

		if err := workflows.ChangePassword(ctx, session, workflows.ChangePasswordOptions{
			Options: opts,
			Trail:   trail,
		}); err != nil {
			return err
		}

		cmd.Println(ui.CheckMark() + " Successfully changed the passphrase of " + ui.Highlight.Sprint(opts.GitURL))
		cmd.Println(ui.Arrow() + " Share the new passphrase with your team")
		return nil
	},
}
