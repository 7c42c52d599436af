package cli

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/changelog"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/github"
	"github.com/ariel-frischer/relnote/internal/output"
	"github.com/ariel-frischer/relnote/internal/versions"
)

var (
	changelogVersionFlag         string
	changelogSkipExistingFlag    bool
	changelogOnlySectionsFlag    []string
	changelogWithoutSectionsFlag []string
	changelogListFlag            bool
)

var changelogCmd = &cobra.Command{
	Use:   "changelog [path]",
	Short: "Generate the changelog entry for a version",
	Long: `Generate the changelog entry for a version and print it to stdout.

The entry covers the pull requests merged between the previous tagged
version and the given one; when the version has no tag yet, commits up to
the branch tip are used. Without --version, the version is read from the
first TOML version file configured in .relnote.yml.

With --skip-existing, pull requests already recorded in the changelog
file's entry for the version are left out, so the command can be re-run as
a release branch grows.

Examples:
  relnote changelog --version 1.2.0
  relnote changelog --version 1.2.0 --skip-existing
  relnote changelog --list`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelog(cmd, args)
	},
}

func init() {
	changelogCmd.GroupID = GroupRelease
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.Flags().StringVar(&changelogVersionFlag, "version", "", "Version to generate the entry for")
	changelogCmd.Flags().BoolVar(&changelogSkipExistingFlag, "skip-existing", false, "Skip pull requests already present in the entry")
	changelogCmd.Flags().StringSliceVar(&changelogOnlySectionsFlag, "only-section", nil, "Sections to include in the changelog")
	changelogCmd.Flags().StringSliceVar(&changelogWithoutSectionsFlag, "without-section", nil, "Sections to exclude from the changelog")
	changelogCmd.Flags().BoolVar(&changelogListFlag, "list", false, "List the versions present in the changelog")
}

func runChangelog(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if changelogListFlag {
		return listChangelogVersions(rc, cmd)
	}

	target, err := resolveVersionOption(rc, changelogVersionFlag, "relnote changelog --version <x.y.z>")
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

	// When the target version is already tagged, collect up to its tag;
	// otherwise up to the branch tip.
	newer := target
	if !containsVersion(tagged, target) {
		newer = nil
	}

	pulls, err := rc.collectPullRequests(cmd.Context(), previous, newer)
	if err != nil {
		return err
	}

	if changelogSkipExistingFlag {
		pulls, err = dropRecorded(pulls, target, rc, cmd)
		if err != nil {
			return err
		}
	}

	section := changelog.FromPullRequests(target, rc.cfg, pulls, changelog.BuildOptions{
		OnlySections:    changelogOnlySectionsFlag,
		WithoutSections: changelogWithoutSectionsFlag,
	})
	fmt.Fprint(out, changelog.EnsureSpacing(section.AsDocument().Render()))
	return nil
}

// resolveVersionOption picks the target version: the --version flag value,
// or the version recorded in the first configured TOML version file.
func resolveVersionOption(rc *repoContext, flagValue, usage string) (*semver.Version, error) {
	if flagValue != "" {
		v, err := versions.Parse(flagValue)
		if err != nil {
			return nil, relerrors.InvalidVersion(flagValue)
		}
		return v, nil
	}

	if s, ok := versionFromFiles(rc); ok {
		v, err := versions.Parse(s)
		if err != nil {
			return nil, relerrors.InvalidVersion(s)
		}
		return v, nil
	}

	return nil, relerrors.NewArgumentErrorWithUsage(
		"no version given and none found in configured version files",
		usage,
		"Pass --version explicitly",
		"Or configure a toml version file in .relnote.yml",
	)
}

// dropRecorded filters out pull requests whose number reference already
// appears in the changelog file's entry for the version.
func dropRecorded(pulls []github.PullRequest, target *semver.Version, rc *repoContext, cmd *cobra.Command) ([]github.PullRequest, error) {
	cl, _, err := changelog.LoadOrNew(rc.changelogPath())
	if err != nil {
		return nil, err
	}
	existing := cl.GetVersionSection(versions.Render(target, rc.format()), rc.cfg.HeadingLevel)
	if existing == nil {
		return pulls, nil
	}

	kept := pulls[:0]
	for _, pr := range pulls {
		if existing.ContainsReference(fmt.Sprintf("[#%d]", pr.Number)) {
			continue
		}
		kept = append(kept, pr)
	}
	if skipped := len(pulls) - len(kept); skipped > 0 {
		output.PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf(
			"Excluding %d pull requests already in changelog entry for %s.",
			skipped, versions.Render(target, rc.format())))
	}
	return kept, nil
}

func listChangelogVersions(rc *repoContext, cmd *cobra.Command) error {
	cl, err := changelog.Load(rc.changelogPath())
	if err != nil {
		return err
	}
	for _, vs := range cl.Versions(rc.cfg.HeadingLevel) {
		fmt.Fprintln(cmd.OutOrStdout(), vs.Version)
	}
	return nil
}

func containsVersion(vs []*semver.Version, v *semver.Version) bool {
	for _, x := range vs {
		if x.Equal(v) {
			return true
		}
	}
	return false
}
