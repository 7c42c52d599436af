package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnote/internal/changelog"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/output"
	"github.com/ariel-frischer/relnote/internal/versionfile"
	"github.com/ariel-frischer/relnote/internal/versions"
)

var (
	releaseBumpFlag            string
	releaseOnlySectionsFlag    []string
	releaseWithoutSectionsFlag []string
	releaseNoVersionFilesFlag  bool
	releaseDryRunFlag          bool
)

var releaseCmd = &cobra.Command{
	Use:   "release [path]",
	Short: "Prepare a new release: bump the version and update the changelog",
	Long: `Prepare a new release for the repository at path (default ".").

The new version is determined from the labels of the pull requests merged
since the last version tag (major_labels/minor_labels/patch_labels in the
config), or forced with --bump. A changelog entry is generated from those
pull requests and merged into the changelog file, and any configured
version files are rewritten with the new version.

Examples:
  relnote release                  # bump detected from labels
  relnote release --bump minor     # force a minor bump
  relnote release --dry-run        # print the entry without writing`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd, args)
	},
}

func init() {
	releaseCmd.GroupID = GroupRelease
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().StringVar(&releaseBumpFlag, "bump", "", "Version bump type: major, minor, or patch")
	releaseCmd.Flags().StringSliceVar(&releaseOnlySectionsFlag, "only-section", nil, "Sections to include in the changelog")
	releaseCmd.Flags().StringSliceVar(&releaseWithoutSectionsFlag, "without-section", nil, "Sections to exclude from the changelog")
	releaseCmd.Flags().BoolVar(&releaseNoVersionFilesFlag, "no-version-files", false, "Skip rewriting configured version files")
	releaseCmd.Flags().BoolVar(&releaseDryRunFlag, "dry-run", false, "Print the changelog entry instead of writing files")
}

func runRelease(cmd *cobra.Command, args []string) error {
	rc, err := newRepoContext(args)
	if err != nil {
		return err
	}
	if err := rc.connect(); err != nil {
		return err
	}

	// Status lines go to stderr so --dry-run output pipes cleanly.
	out := cmd.ErrOrStderr()

	tagged, err := rc.tagVersions()
	if err != nil {
		return err
	}
	lastVersion := versions.Latest(tagged)
	if lastVersion == nil {
		output.PrintInfo(out, "No version tags found; treating this as the first release.")
	} else {
		output.PrintInfo(out, fmt.Sprintf("Found last version tag %s.", versions.Render(lastVersion, rc.format())))
	}

	pulls, err := rc.collectPullRequests(cmd.Context(), lastVersion, nil)
	if err != nil {
		return err
	}
	output.PrintInfo(out, fmt.Sprintf("Found %d pull requests since last release.", len(pulls)))

	bump := detectBump(pulls, rc.cfg)
	if releaseBumpFlag != "" {
		bump, err = versions.ParseBumpType(releaseBumpFlag)
		if err != nil {
			return relerrors.InvalidBump(releaseBumpFlag)
		}
	}

	base := lastVersion
	if base == nil {
		base = versions.Zero()
	}
	newVersion, err := versions.Bump(base, bump)
	if err != nil {
		return err
	}
	output.PrintInfo(out, fmt.Sprintf("Next version: %s (%s bump)", versions.Render(newVersion, rc.format()), bump))

	section := changelog.FromPullRequests(newVersion, rc.cfg, pulls, changelog.BuildOptions{
		OnlySections:    releaseOnlySectionsFlag,
		WithoutSections: releaseWithoutSectionsFlag,
	})

	cl, created, err := changelog.LoadOrNew(rc.changelogPath())
	if err != nil {
		return err
	}
	if created {
		output.PrintInfo(out, fmt.Sprintf("Creating new changelog file %s.", rc.cfg.ChangelogFile))
	}
	cl.InsertVersionSection(section, rc.cfg.HeadingLevel)

	if releaseDryRunFlag {
		output.PrintRule(out, "changelog preview")
		fmt.Fprint(cmd.OutOrStdout(), cl.ToMarkdown())
		return nil
	}

	if err := os.WriteFile(rc.changelogPath(), []byte(cl.ToMarkdown()), 0o644); err != nil {
		return relerrors.FileNotWritable(rc.changelogPath())
	}
	output.PrintSuccess(out, "Updated "+rc.cfg.ChangelogFile)

	if !releaseNoVersionFilesFlag {
		if err := applyVersionFiles(rc, base, newVersion, out); err != nil {
			return err
		}
	}
	return nil
}

func applyVersionFiles(rc *repoContext, old, new *semver.Version, out io.Writer) error {
	for _, vf := range rc.cfg.VersionFiles {
		path := filepath.Join(rc.path, vf.Path)
		err := versionfile.Apply(path, versionfile.Format(vf.Format), vf.Field, old.String(), new.String())
		if err != nil {
			return fmt.Errorf("updating %s: %w", vf.Path, err)
		}
		output.PrintSuccess(out, "Updated version in "+vf.Path)
	}
	return nil
}
