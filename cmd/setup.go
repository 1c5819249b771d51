package cmd

import (
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/thorgate/flint/internal/configs"
	"github.com/thorgate/flint/internal/ui"
	"github.com/thorgate/flint/internal/workflows"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a Flintfile for this project",
	Long: `Writes a Flintfile holding the options passed as flags. The file goes into the
fastlane/ directory when the project has one, and into the current directory
otherwise.

Examples:
  flint setup --git-url git@github.com:team/keystores.git --app-identifier com.example.app`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting setup command")
		opts, err := configs.FromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		result, err := workflows.Setup(workflows.SetupOptions{Dir: wd, Options: opts})
		if err != nil {
			return err
		}

		if !verbose && !debug {
			figure.NewColorFigure("flint", "standard", "green", true).Print()
		}
		cmd.Println()
		cmd.Println(ui.CheckMark() + " Wrote " + ui.Path.Sprint(result.Path))
		cmd.Println(ui.Arrow() + " Run " + ui.Code.Sprint("flint sync development") + " to fetch or create your keystore")
		return nil
	},
}
