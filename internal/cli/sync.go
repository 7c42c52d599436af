package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/changelog"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/output"
	"github.com/ariel-frischer/relnote/internal/versions"
)

var syncDryRunFlag bool

var syncCmd = &cobra.Command{
	Use:   "sync <version> [path]",
	Short: "Push a changelog entry to the GitHub release notes",
	Long: `Push the changelog entry for a version to the body of its GitHub
release. The entry is extracted from the changelog file byte for byte, its
version heading rewritten to a generic "Changes" heading, and uploaded via
the GitHub API. The release must already exist for the version's tag.

Examples:
  relnote sync 1.2.0
  relnote sync 1.2.0 --dry-run   # print the body without uploading`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args)
	},
}

func init() {
	syncCmd.GroupID = GroupRelease
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRunFlag, "dry-run", false, "Print the release body instead of uploading it")
}

func runSync(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args[1:])
	if err != nil {
		return err
	}

	target, err := versions.Parse(args[0])
	if err != nil {
		return relerrors.InvalidVersion(args[0])
	}
	rendered := versions.Render(target, rc.format())

	data, err := os.ReadFile(rc.changelogPath())
	if err != nil {
		return fmt.Errorf("reading changelog file: %w", err)
	}

	entry, ok := changelog.ExtractEntry(string(data), rendered, rc.cfg.HeadingLevel)
	if !ok {
		relerrors.PrintError(relerrors.VersionNotFound(rendered, rc.cfg.ChangelogFile))
		return NewExitError(ExitInvalidArguments)
	}
	body := changelog.EntryToStandalone(entry, rc.cfg.HeadingLevel)

	if syncDryRunFlag {
		fmt.Fprint(cmd.OutOrStdout(), body)
		return nil
	}

	if err := rc.connect(); err != nil {
		return err
	}

	tag := rc.cfg.VersionTagPrefix + rendered
	release, err := rc.client.GetRelease(cmd.Context(), rc.owner, rc.repo, tag)
	if err != nil {
		return err
	}
	if release == nil {
		relerrors.PrintError(relerrors.ReleaseNotFound(tag))
		return NewExitError(ExitMissingDependencies)
	}

	if err := rc.client.UpdateReleaseNotes(cmd.Context(), rc.owner, rc.repo, release.ID, body); err != nil {
		return err
	}
	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Synced changelog entry for %s to release %s", rendered, tag))
	return nil
}
