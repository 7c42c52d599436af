package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/changelog"
	"github.com/ariel-frischer/relnote/internal/output"
	"github.com/ariel-frischer/relnote/internal/versions"
)

var contributorsVersionFlag string

var contributorsCmd = &cobra.Command{
	Use:   "contributors [path]",
	Short: "Generate the contributor list for a version",
	Long: `Generate the contributor list for a version and print it to stdout.

Only authors of pull requests merged between the given version and the one
before it are included; authors in changelog_ignore_authors are excluded.
Without --version, the version is read from the first TOML version file
configured in .relnote.yml.

Example:
  relnote contributors --version 1.2.0`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContributors(cmd, args)
	},
}

func init() {
	contributorsCmd.GroupID = GroupQuery
	rootCmd.AddCommand(contributorsCmd)

	contributorsCmd.Flags().StringVar(&contributorsVersionFlag, "version", "", "Version to list contributors for")
}

func runContributors(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args)
	if err != nil {
		return err
	}

	target, err := resolveVersionOption(rc, contributorsVersionFlag, "relnote contributors --version <x.y.z>")
	if err != nil {
		return err
	}

	if err := rc.connect(); err != nil {
		return err
	}

	tagged, err := rc.tagVersions()
	if err != nil {
		return err
	}
	previous := versions.Previous(tagged, target)
	if previous != nil {
		output.PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("Found previous version %s.", versions.Render(previous, rc.format())))
	}

	pulls, err := rc.collectPullRequests(cmd.Context(), previous, nil)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), changelog.Contributors(pulls, rc.cfg, rc.cfg.HeadingLevel))
	return nil
}
