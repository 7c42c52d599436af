package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/changelog"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/versions"
)

var extractCmd = &cobra.Command{
	Use:   "extract <version> [path]",
	Short: "Print the raw changelog entry for a version",
	Long: `Print the changelog entry for a version exactly as it appears in the
changelog file, byte for byte. This is the slice suitable for pasting into
release announcements or piping to other tools.

Examples:
  relnote extract 1.2.0
  relnote extract v1.2.0      # v prefix optional`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args)
	},
}

func init() {
	extractCmd.GroupID = GroupQuery
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args[1:])
	if err != nil {
		return err
	}

	target, err := versions.Parse(args[0])
	if err != nil {
		return relerrors.InvalidVersion(args[0])
	}

	data, err := os.ReadFile(rc.changelogPath())
	if err != nil {
		return fmt.Errorf("reading changelog file: %w", err)
	}

	rendered := versions.Render(target, rc.format())
	entry, ok := changelog.ExtractEntry(string(data), rendered, rc.cfg.HeadingLevel)
	if !ok {
		relerrors.PrintError(relerrors.VersionNotFound(rendered, rc.cfg.ChangelogFile))
		return NewExitError(ExitInvalidArguments)
	}

	fmt.Fprint(cmd.OutOrStdout(), entry)
	return nil
}
