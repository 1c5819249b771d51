package cmd

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/utils"
	"github.com/thorgate/flint/internal/workflows"
)

var nukeCmd = &cobra.Command{
	Use:   "nuke development|release",
	Short: "Delete all keystores of one type from the repository",
	Long: `Deletes every keystore of the given type from the keystores repository and
pushes the deletion. You are asked to confirm unless --skip-confirmation is set.

Nuking release keystores may make it impossible to update your app in the
Play Store.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: configs.Environments,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting nuke command")
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

		envType := args[0]
		out := cmd.OutOrStdout()
		in := bufio.NewReader(cmd.InOrStdin())

		result, err := workflows.Nuke(ctx, session, workflows.NukeOptions{
			Options: opts,
			Type:    envType,
			Log:     Logger,
			Trail:   trail,
			Confirm: func(root string, files []string) (bool, error) {
				fmt.Fprintln(out)
				if err := ui.PrintNukeList(out, root, files); err != nil {
					return false, err
				}
				fmt.Fprintln(out)

				if envType == "release" {
					ok, err := utils.Confirm(in, out, ui.Error.Sprint("DANGER:")+" By nuking release keys you might not be able to update your app in the play store. Are you sure?")
					if err != nil || !ok {
						return false, err
					}
				}
				fmt.Fprintln(out, ui.Error.Sprint("---"))
				fmt.Fprintln(out, ui.Error.Sprint("Are you sure you want to completely delete and revoke all the"))
				fmt.Fprintln(out, ui.Error.Sprint("keystores listed above?"))
				fmt.Fprintln(out, ui.Error.Sprint("---"))
				return utils.Confirm(in, out, "Do you really want to nuke everything listed above?")
			},
		})
		if err != nil {
			return err
		}

		switch {
		case len(result.Files) == 0:
			fmt.Fprintln(out, ui.CheckMark()+" No relevant keystores found, nothing to nuke here :)")
		case result.Cancelled:
			fmt.Fprintln(out, ui.Warning.Sprint("⚠")+" Cancelled nuking #thanks 🏠 👨 ‍👩 ‍👧")
		default:
			fmt.Fprintln(out, ui.CheckMark()+" Deleted "+strconv.Itoa(len(result.Files))+" keystores. Successfully cleaned up ♻️")
		}
		return nil
	},
}
