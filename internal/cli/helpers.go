package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/ariel-frischer/relnote/internal/config"
	relerrors "github.com/ariel-frischer/relnote/internal/errors"
	"github.com/ariel-frischer/relnote/internal/github"
	"github.com/ariel-frischer/relnote/internal/gitrepo"
	"github.com/ariel-frischer/relnote/internal/progress"
	"github.com/ariel-frischer/relnote/internal/versionfile"
	"github.com/ariel-frischer/relnote/internal/versions"
)

// repoContext bundles the per-invocation state most commands share: the
// repository path, its configuration, and (once connected) the GitHub client
// and repository coordinates.
type repoContext struct {
	path   string
	cfg    *config.Config
	owner  string
	repo   string
	client *github.Client
}

// newRepoContext resolves the repository path argument (default ".") and
// loads configuration for it.
func newRepoContext(args []string) (*repoContext, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &repoContext{path: path, cfg: cfg}, nil
}

// connect resolves the GitHub remote and token and builds an API client.
// Commands that work purely on local files never call this.
func (rc *repoContext) connect() error {
	remote, err := gitrepo.RemoteURL(rc.path, "origin")
	if err != nil {
		return err
	}
	if remote == "" {
		return relerrors.NoRemoteConfigured("origin")
	}

	owner, repo, err := github.ParseRemoteURL(remote)
	if err != nil {
		return relerrors.RemoteNotGitHub(remote)
	}

	token, err := github.Token()
	if err != nil || token == "" {
		return relerrors.MissingToken()
	}

	cacheDir := rc.cfg.CacheDir
	if cacheDir != "" && !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(rc.path, cacheDir)
	}

	rc.owner = owner
	rc.repo = repo
	rc.client = github.NewClient(token, github.NewCache(cacheDir))
	return nil
}

// changelogPath is the changelog file location for this repository.
func (rc *repoContext) changelogPath() string {
	return filepath.Join(rc.path, rc.cfg.ChangelogFile)
}

// format is the configured version rendering format.
func (rc *repoContext) format() versions.Format {
	f, err := versions.ParseFormat(rc.cfg.VersionFormat)
	if err != nil {
		return versions.FormatSemver
	}
	return f
}

// tagVersions lists the repository's release versions from git tags.
func (rc *repoContext) tagVersions() ([]*semver.Version, error) {
	return gitrepo.TagVersions(rc.path, rc.cfg.VersionTagPrefix)
}

// collectPullRequests resolves the pull requests merged between two versions
// (older exclusive, newer inclusive; nil newer means the branch tip).
func (rc *repoContext) collectPullRequests(ctx context.Context, older, newer *semver.Version) ([]github.PullRequest, error) {
	commits, err := gitrepo.CommitsBetween(rc.path, rc.cfg.VersionTagPrefix, rc.format(), older, newer)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}

	hashes := make([]string, len(commits))
	for i, c := range commits {
		hashes[i] = c.Hash
	}

	sp := progress.Start(fmt.Sprintf("Resolving pull requests for %d commits", len(commits)))
	defer sp.Stop()
	return rc.client.PullRequestsForCommits(ctx, rc.owner, rc.repo, hashes)
}

// versionFromFiles reads the current version from the first configured TOML
// version file, when one exists.
func versionFromFiles(rc *repoContext) (string, bool) {
	for _, vf := range rc.cfg.VersionFiles {
		if vf.Format != "toml" || vf.Field == "" {
			continue
		}
		v, err := versionfile.ReadTOMLVersion(filepath.Join(rc.path, vf.Path), vf.Field)
		if err != nil {
			continue
		}
		return v, true
	}
	return "", false
}

// detectBump picks the version bump from the labels carried by the pull
// requests, falling back to the configured default. Precedence: major over
// minor over patch.
func detectBump(pulls []github.PullRequest, cfg *config.Config) versions.BumpType {
	labels := make(map[string]struct{})
	for _, pr := range pulls {
		for _, l := range pr.Labels {
			labels[l] = struct{}{}
		}
	}

	hasAnyOf := func(candidates []string) bool {
		for _, c := range candidates {
			if _, ok := labels[c]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case hasAnyOf(cfg.MajorLabels):
		return versions.BumpMajor
	case hasAnyOf(cfg.MinorLabels):
		return versions.BumpMinor
	case hasAnyOf(cfg.PatchLabels):
		return versions.BumpPatch
	}

	if bump, err := versions.ParseBumpType(cfg.DefaultBump); err == nil {
		return bump
	}
	return versions.BumpPatch
}
