package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/relnote/internal/changelog"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/github"
	"github.com/ariel-frischer/relnote/internal/gitrepo"
	"github.com/ariel-frischer/relnote/internal/output"
	"github.com/ariel-frischer/relnote/internal/progress"
	"github.com/ariel-frischer/relnote/internal/versions"
)

// backfillConcurrency bounds the number of in-flight GitHub lookups.
const backfillConcurrency = 4

var (
	backfillClearFlag           bool
	backfillIncludeFirstFlag    bool
	backfillStartVersionFlag    string
	backfillOnlySectionsFlag    []string
	backfillWithoutSectionsFlag []string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill [path]",
	Short: "Regenerate changelog entries for every tagged version",
	Long: `Regenerate the changelog from the repository's version tags.

For each tagged version, the pull requests merged since the previous tag
are resolved and a changelog entry is generated and merged in. Existing
entries for those versions are replaced; other content is left alone.
Use --clear to start from an empty changelog instead.

Examples:
  relnote backfill
  relnote backfill --clear --include-first
  relnote backfill --start-version 1.0.0`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(cmd, args)
	},
}

func init() {
	backfillCmd.GroupID = GroupRelease
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().BoolVar(&backfillClearFlag, "clear", false, "Start from an empty changelog")
	backfillCmd.Flags().BoolVar(&backfillIncludeFirstFlag, "include-first", false, "Include the first version (all commits before it)")
	backfillCmd.Flags().StringVar(&backfillStartVersionFlag, "start-version", "", "Skip versions older than this one")
	backfillCmd.Flags().StringSliceVar(&backfillOnlySectionsFlag, "only-section", nil, "Sections to include in the changelog")
	backfillCmd.Flags().StringSliceVar(&backfillWithoutSectionsFlag, "without-section", nil, "Sections to exclude from the changelog")
}

// backfillEntry pairs a version with the pull requests feeding its entry.
type backfillEntry struct {
	version  *semver.Version
	previous *semver.Version
	pulls    []github.PullRequest
	skip     bool
}

func runBackfill(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args)
	if err != nil {
		return err
	}
	if err := rc.connect(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var startVersion *semver.Version
	if backfillStartVersionFlag != "" {
		startVersion, err = versions.Parse(backfillStartVersionFlag)
		if err != nil {
			return relerrors.InvalidVersion(backfillStartVersionFlag)
		}
	}

	var cl *changelog.Changelog
	if backfillClearFlag {
		cl = changelog.New()
		output.PrintInfo(out, "Starting from an empty changelog.")
	} else {
		var created bool
		cl, created, err = changelog.LoadOrNew(rc.changelogPath())
		if err != nil {
			return err
		}
		if created {
			output.PrintInfo(out, fmt.Sprintf("Creating new changelog file %s.", rc.cfg.ChangelogFile))
		}
	}

	tagged, err := rc.tagVersions()
	if err != nil {
		return err
	}
	if len(tagged) == 0 {
		return relerrors.NewRepositoryError(
			"no version tags found to backfill from",
			"Tag releases first, e.g.: git tag v0.1.0",
		)
	}
	sort.Sort(semver.Collection(tagged))

	entries := planBackfill(tagged, startVersion)
	if err := fetchBackfillPulls(cmd, rc, entries); err != nil {
		return err
	}

	for _, e := range entries {
		if e.skip {
			continue
		}
		if e.previous != nil {
			output.PrintInfo(out, fmt.Sprintf("Found %d pull requests between %s and %s.",
				len(e.pulls), versions.Render(e.previous, rc.format()), versions.Render(e.version, rc.format())))
		} else {
			output.PrintInfo(out, fmt.Sprintf("Found %d pull requests before %s.",
				len(e.pulls), versions.Render(e.version, rc.format())))
		}

		section := changelog.FromPullRequests(e.version, rc.cfg, e.pulls, changelog.BuildOptions{
			OnlySections:    backfillOnlySectionsFlag,
			WithoutSections: backfillWithoutSectionsFlag,
		})
		cl.InsertVersionSection(section, rc.cfg.HeadingLevel)
	}

	if err := os.WriteFile(rc.changelogPath(), []byte(cl.ToMarkdown()), 0o644); err != nil {
		return relerrors.FileNotWritable(rc.changelogPath())
	}
	output.PrintSuccess(out, "Updated "+rc.cfg.ChangelogFile)
	return nil
}

// planBackfill builds the (previous, version) pairs to regenerate, oldest
// first. The first version is skipped unless --include-first is set, and
// versions before --start-version are skipped.
func planBackfill(tagged []*semver.Version, startVersion *semver.Version) []*backfillEntry {
	entries := make([]*backfillEntry, 0, len(tagged))
	for i, v := range tagged {
		e := &backfillEntry{version: v}
		if i > 0 {
			e.previous = tagged[i-1]
		} else if !backfillIncludeFirstFlag {
			e.skip = true
		}
		if startVersion != nil && v.LessThan(startVersion) {
			e.skip = true
		}
		entries = append(entries, e)
	}
	return entries
}

// fetchBackfillPulls resolves the pull-request set for every planned entry,
// a bounded number of versions at a time. Each lookup walks its own commit
// range and queries GitHub independently, so they parallelize cleanly.
func fetchBackfillPulls(cmd *cobra.Command, rc *repoContext, entries []*backfillEntry) error {
	sp := progress.Start("Retrieving pull requests for tagged versions")
	defer sp.Stop()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(backfillConcurrency)

	for _, e := range entries {
		if e.skip {
			continue
		}
		e := e
		g.Go(func() error {
			commits, err := gitrepo.CommitsBetween(rc.path, rc.cfg.VersionTagPrefix, rc.format(), e.previous, e.version)
			if err != nil {
				return err
			}
			hashes := make([]string, len(commits))
			for i, c := range commits {
				hashes[i] = c.Hash
			}
			e.pulls, err = rc.client.PullRequestsForCommits(ctx, rc.owner, rc.repo, hashes)
			return err
		})
	}
	return g.Wait()
}
