package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/config"
	"github.com/ariel-frischer/relnote/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter .relnote.yml configuration file",
	Long: `Write a starter .relnote.yml to the repository root with the default
settings spelled out, ready to edit. Fails if the file already exists.

Example:
  relnote init`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		target := filepath.Join(path, config.ProjectConfigName)
		if err := config.WriteDefault(target); err != nil {
			return err
		}
		output.PrintSuccess(cmd.OutOrStdout(), "Wrote "+target)
		return nil
	},
}

func init() {
	initCmd.GroupID = GroupQuery
	rootCmd.AddCommand(initCmd)
}
