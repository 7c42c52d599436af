package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnote/internal/config"
	"github.com/ariel-frischer/relnote/internal/github"
)

func pr(number int, title, author string, labels ...string) github.PullRequest {
	return github.PullRequest{
		Title:     title,
		Number:    number,
		Labels:    labels,
		Author:    author,
		RepoOwner: "owner",
		RepoName:  "repo",
	}
}

func sectionedConfig() *config.Config {
	cfg := testConfig()
	cfg.ChangelogSections = []config.LabelSection{
		{Label: "breaking", Title: "Breaking changes"},
		{Label: "feature", Title: "New features"},
		{Label: "fix", Title: "Bug fixes"},
	}
	return cfg
}

func buildMarkdown(t *testing.T, cfg *config.Config, pulls []github.PullRequest, opts BuildOptions) string {
	t.Helper()
	section := FromPullRequests(semver.MustParse("1.0.0"), cfg, pulls, opts)
	return EnsureSpacing(section.AsDocument().Render())
}

func TestFromPullRequestsSectionOrderFollowsConfig(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "A fix", "alice", "fix"),
		pr(2, "A feature", "bob", "feature"),
		pr(3, "A break", "carol", "breaking"),
		pr(4, "Unlabeled", "dave"),
	}, BuildOptions{})

	breaking := strings.Index(got, "### Breaking changes")
	features := strings.Index(got, "### New features")
	fixes := strings.Index(got, "### Bug fixes")
	other := strings.Index(got, "### Other changes")
	require.NotEqual(t, -1, breaking)
	require.NotEqual(t, -1, features)
	require.NotEqual(t, -1, fixes)
	require.NotEqual(t, -1, other)
	assert.Less(t, breaking, features)
	assert.Less(t, features, fixes)
	assert.Less(t, fixes, other)
}

func TestFromPullRequestsFirstMatchingSectionWins(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "Both labels", "alice", "feature", "fix"),
	}, BuildOptions{})

	assert.Contains(t, got, "### New features")
	assert.NotContains(t, got, "### Bug fixes")
}

func TestFromPullRequestsDeduplicates(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(7, "Once", "alice", "fix"),
		pr(7, "Once", "alice", "fix"),
	}, BuildOptions{})

	assert.Equal(t, 1, strings.Count(got, "[#7]"))
}

func TestFromPullRequestsSortsEntriesByTitle(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(2, "zebra fix", "alice", "fix"),
		pr(1, "aardvark fix", "bob", "fix"),
	}, BuildOptions{})

	assert.Less(t, strings.Index(got, "aardvark fix"), strings.Index(got, "zebra fix"))
}

func TestFromPullRequestsIgnoreLabels(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.ChangelogIgnoreLabels = []string{"internal"}

	got := buildMarkdown(t, cfg, []github.PullRequest{
		pr(1, "Visible", "alice", "fix"),
		pr(2, "Hidden", "bob", "fix", "internal"),
	}, BuildOptions{})

	assert.Contains(t, got, "Visible")
	assert.NotContains(t, got, "Hidden")
	// An ignored pull request's author still earned the contribution.
	assert.Contains(t, got, "[@bob]")
}

func TestFromPullRequestsOnlySections(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "A fix", "alice", "fix"),
		pr(2, "A feature", "bob", "feature"),
		pr(3, "Unlabeled", "carol"),
	}, BuildOptions{OnlySections: []string{"fix"}})

	assert.Contains(t, got, "### Bug fixes")
	assert.NotContains(t, got, "### New features")
	// With a selection active, unmatched records are omitted rather than
	// routed to the fallback.
	assert.NotContains(t, got, "### Other changes")
	assert.NotContains(t, got, "Unlabeled")
}

func TestFromPullRequestsWithoutSections(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "A fix", "alice", "fix"),
		pr(2, "A feature", "bob", "feature"),
	}, BuildOptions{WithoutSections: []string{"feature"}})

	assert.Contains(t, got, "### Bug fixes")
	// The record matched the excluded section, so it is dropped entirely,
	// not relocated to another bucket.
	assert.NotContains(t, got, "A feature")
	assert.NotContains(t, got, "### Other changes")
}

func TestFromPullRequestsOnlySectionsRelocatesMultiLabel(t *testing.T) {
	t.Parallel()

	// Breaking changes comes first in mapping order but is deselected, so
	// the walk skips it and the record lands in the selected later section
	// rather than disappearing.
	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "Breaking feature", "alice", "breaking", "feature"),
	}, BuildOptions{OnlySections: []string{"New features"}})

	assert.Contains(t, got, "### New features")
	assert.Contains(t, got, "Breaking feature")
	assert.NotContains(t, got, "### Breaking changes")
}

func TestFromPullRequestsWithoutSectionsDropsMultiLabel(t *testing.T) {
	t.Parallel()

	// A record matching an excluded section is dropped outright; it is not
	// relocated to another section it also matches.
	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "Breaking feature", "alice", "breaking", "feature"),
		pr(2, "Plain break", "bob", "breaking"),
	}, BuildOptions{WithoutSections: []string{"New features"}})

	assert.Contains(t, got, "Plain break")
	assert.NotContains(t, got, "Breaking feature")
	assert.NotContains(t, got, "### New features")
}

func TestFromPullRequestsSectionFilterByTitle(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "A fix", "alice", "fix"),
		pr(2, "A feature", "bob", "feature"),
	}, BuildOptions{OnlySections: []string{"Bug fixes"}})

	assert.Contains(t, got, "### Bug fixes")
	assert.NotContains(t, got, "### New features")
}

func TestFromPullRequestsContributors(t *testing.T) {
	t.Parallel()

	got := buildMarkdown(t, sectionedConfig(), []github.PullRequest{
		pr(1, "One", "zoe", "fix"),
		pr(2, "Two", "adam", "feature"),
		pr(3, "Bot bump", "dependabot", "fix"),
	}, BuildOptions{})

	// Sorted, deduplicated, ignored authors excluded.
	assert.Contains(t, got, "### Contributors")
	assert.Less(t, strings.Index(got, "[@adam]"), strings.Index(got, "[@zoe]"))
	assert.NotContains(t, got, "dependabot")
}

func TestFromPullRequestsContributorsDisabled(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.ChangelogContributors = false

	got := buildMarkdown(t, cfg, []github.PullRequest{pr(1, "One", "alice", "fix")}, BuildOptions{})
	assert.NotContains(t, got, "Contributors")
}

func TestFromPullRequestsReleaseDate(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.ChangelogReleaseDate = true

	date := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	got := buildMarkdown(t, cfg, []github.PullRequest{pr(1, "One", "alice", "fix")}, BuildOptions{ReleaseDate: date})
	assert.Contains(t, got, "Released on 2024-03-15.")

	// Disabled by default.
	got = buildMarkdown(t, sectionedConfig(), []github.PullRequest{pr(1, "One", "alice", "fix")}, BuildOptions{})
	assert.NotContains(t, got, "Released on")
}

func TestFromPullRequestsChangeTemplate(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.ChangeTemplate = "- {title} by @{author} in #{number}"

	got := buildMarkdown(t, cfg, []github.PullRequest{pr(9, "Tweak", "alice", "fix")}, BuildOptions{})
	assert.Contains(t, got, "- Tweak by @alice in #9")
}

func TestFromPullRequestsTrimTitlePrefixes(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.TrimTitlePrefixes = []string{"fix:", "feat:"}

	got := buildMarkdown(t, cfg, []github.PullRequest{
		pr(1, "fix: handle empty input", "alice", "fix"),
	}, BuildOptions{})
	assert.Contains(t, got, "- handle empty input (")
}

func TestFromPullRequestsRequireLabels(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.RequireLabels = []string{"changelog"}

	got := buildMarkdown(t, cfg, []github.PullRequest{
		pr(1, "Tracked", "alice", "fix", "changelog"),
		pr(2, "Untracked", "bob", "fix"),
	}, BuildOptions{})

	assert.Contains(t, got, "Tracked")
	assert.NotContains(t, got, "Untracked")
}

func TestFromPullRequestsGomodFormat(t *testing.T) {
	t.Parallel()

	cfg := sectionedConfig()
	cfg.VersionFormat = "gomod"

	section := FromPullRequests(semver.MustParse("1.0.0"), cfg, nil, BuildOptions{})
	assert.Equal(t, "v1.0.0", section.Version)
	assert.Equal(t, "## v1.0.0", section.Heading.Raw)
}

func TestFromPullRequestsEmptyInput(t *testing.T) {
	t.Parallel()

	section := FromPullRequests(semver.MustParse("1.0.0"), sectionedConfig(), nil, BuildOptions{})
	assert.Empty(t, section.Children)
}

func TestVersionSectionFromParsesTitle(t *testing.T) {
	t.Parallel()

	parsed := sectionForVersion("v1.2.3")
	require.NotNil(t, parsed.parsed)
	assert.Equal(t, "v1.2.3", parsed.Version)

	unparsed := sectionForVersion("Unreleased")
	assert.Nil(t, unparsed.parsed)
}
