package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnote/internal/config"
	"github.com/ariel-frischer/relnote/internal/github"
	"github.com/ariel-frischer/relnote/internal/markdown"
)

// sectionForVersion builds an empty version section for merge tests.
func sectionForVersion(v string) *VersionSection {
	return versionSectionFrom(Section{
		Heading: markdown.NewHeading(v, 2),
		Title:   v,
		Level:   2,
	})
}

// entryBlocks parses a fragment into children blocks, blank-terminated the
// way the builder produces them.
func entryBlocks(text string) []markdown.Block {
	return append(markdown.ParseBlocks(text), markdown.Blank())
}

// testConfig mirrors the built-in defaults without touching the filesystem.
func testConfig() *config.Config {
	return &config.Config{
		ChangelogFile:          "CHANGELOG.md",
		HeadingLevel:           2,
		UnknownSectionTitle:    "Other changes",
		ChangelogContributors:  true,
		ChangelogIgnoreAuthors: []string{"dependabot"},
		MajorLabels:            []string{"breaking"},
		MinorLabels:            []string{"feature"},
		PatchLabels:            []string{"fix"},
		ChangeTemplate:         "- {title} ([#{number}]({url}))",
		VersionFormat:          "semver",
		DefaultBump:            "patch",
	}
}

func TestNewChangelogRendersTitle(t *testing.T) {
	t.Parallel()

	cl := New()
	assert.Equal(t, "# Changelog\n", cl.ToMarkdown())
}

func TestSinglePullRequestEndToEnd(t *testing.T) {
	t.Parallel()

	pulls := []github.PullRequest{
		{Title: "Test", Number: 1, Author: "author", RepoOwner: "owner", RepoName: "repo"},
	}
	section := FromPullRequests(semver.MustParse("0.1.0"), testConfig(), pulls, BuildOptions{})

	cl := New()
	cl.InsertVersionSection(section, 2)

	want := `# Changelog

## 0.1.0

### Other changes

- Test ([#1](https://github.com/owner/repo/pull/1))

### Contributors

- [@author](https://github.com/author)
`
	assert.Equal(t, want, cl.ToMarkdown())
}

func TestInsertVersionSectionOrdering(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing  []string
		insert    string
		wantOrder []string
	}{
		"newest goes first": {
			existing:  []string{"0.2.0", "0.1.0"},
			insert:    "0.3.0",
			wantOrder: []string{"0.3.0", "0.2.0", "0.1.0"},
		},
		"between existing versions": {
			existing:  []string{"0.3.0", "0.1.0"},
			insert:    "0.2.0",
			wantOrder: []string{"0.3.0", "0.2.0", "0.1.0"},
		},
		"oldest appends at the end": {
			existing:  []string{"0.3.0", "0.2.0"},
			insert:    "0.1.0",
			wantOrder: []string{"0.3.0", "0.2.0", "0.1.0"},
		},
		"empty changelog": {
			existing:  nil,
			insert:    "1.0.0",
			wantOrder: []string{"1.0.0"},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := New()
			for _, v := range tt.existing {
				cl.InsertVersionSection(sectionForVersion(v), 2)
			}
			cl.InsertVersionSection(sectionForVersion(tt.insert), 2)

			var got []string
			for _, vs := range cl.Versions(2) {
				got = append(got, vs.Version)
			}
			assert.Equal(t, tt.wantOrder, got)
		})
	}
}

func TestInsertVersionSectionReplacesInPlace(t *testing.T) {
	t.Parallel()

	source := `# Changelog

## 0.3.0

- old entry three

## 0.2.0

- old entry two

## 0.1.0

- old entry one
`
	// Byte slices of the sections surrounding the one being replaced.
	slice := func(text, from, to string) string {
		t.Helper()
		start := strings.Index(text, from)
		require.NotEqual(t, -1, start)
		if to == "" {
			return text[start:]
		}
		end := strings.Index(text, to)
		require.NotEqual(t, -1, end)
		require.Less(t, start, end)
		return text[start:end]
	}

	newestBefore := slice(source, "## 0.3.0", "## 0.2.0")
	oldestBefore := slice(source, "## 0.1.0", "")

	cl := FromMarkdown(source)
	section := sectionForVersion("0.2.0")
	section.Children = entryBlocks("- new entry two")
	cl.InsertVersionSection(section, 2)

	got := cl.ToMarkdown()
	assert.Contains(t, got, "- new entry two")
	assert.NotContains(t, got, "- old entry two")

	// The surrounding sections are byte-identical to the input.
	assert.Equal(t, newestBefore, slice(got, "## 0.3.0", "## 0.2.0"))
	assert.Equal(t, oldestBefore, slice(got, "## 0.1.0", ""))

	// Still exactly three versions, same order.
	var versions []string
	for _, vs := range cl.Versions(2) {
		versions = append(versions, vs.Version)
	}
	assert.Equal(t, []string{"0.3.0", "0.2.0", "0.1.0"}, versions)
}

func TestInsertVersionSectionVPrefixMatches(t *testing.T) {
	t.Parallel()

	cl := FromMarkdown("# Changelog\n\n## v0.1.0\n\n- old\n")
	section := sectionForVersion("0.1.0")
	section.Children = entryBlocks("- new")
	cl.InsertVersionSection(section, 2)

	got := cl.ToMarkdown()
	assert.Contains(t, got, "- new")
	assert.NotContains(t, got, "- old")
	assert.Len(t, cl.Versions(2), 1)
}

func TestInsertEmptySectionAddsMarker(t *testing.T) {
	t.Parallel()

	cl := New()
	cl.InsertVersionSection(sectionForVersion("0.1.0"), 2)

	assert.Equal(t, "# Changelog\n\n## 0.1.0\n\n<!-- No changes -->\n", cl.ToMarkdown())
}

func TestInsertUnparseableVersionGoesToTop(t *testing.T) {
	t.Parallel()

	cl := New()
	cl.InsertVersionSection(sectionForVersion("0.1.0"), 2)

	section := &VersionSection{
		Section: Section{
			Heading: markdown.NewHeading("next", 2),
			Title:   "next",
			Level:   2,
		},
		Version: "next",
	}
	cl.InsertVersionSection(section, 2)

	// No ordering can be established, so the section lands at the top of
	// the document, before the title heading.
	got := cl.ToMarkdown()
	assert.Regexp(t, `(?s)^## next.*# Changelog.*## 0\.1\.0`, got)
}

func TestInsertStopsAtUnparseableExistingHeading(t *testing.T) {
	t.Parallel()

	cl := FromMarkdown("# Changelog\n\n## Unreleased\n\n- pending\n\n## 0.5.0\n\n- old\n")
	cl.InsertVersionSection(sectionForVersion("0.1.0"), 2)

	// The unparseable "Unreleased" heading acts as a scan boundary, so the
	// new section is inserted before it rather than sorted below 0.5.0.
	got := cl.ToMarkdown()
	assert.Regexp(t, `(?s)## 0\.1\.0.*## Unreleased.*## 0\.5\.0`, got)
}

func TestGetVersionSection(t *testing.T) {
	t.Parallel()

	cl := FromMarkdown("# Changelog\n\n## v0.2.0\n\n- two\n\n## 0.1.0\n\n- one\n")

	tests := map[string]struct {
		lookup string
		found  bool
	}{
		"exact match":           {lookup: "0.1.0", found: true},
		"v prefix on lookup":    {lookup: "v0.1.0", found: true},
		"v prefix in changelog": {lookup: "0.2.0", found: true},
		"absent version":        {lookup: "9.9.9", found: false},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := cl.GetVersionSection(tt.lookup, 2)
			if tt.found {
				require.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestLoadOrNew(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")

	cl, created, err := LoadOrNew(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "# Changelog\n", cl.ToMarkdown())

	require.NoError(t, os.WriteFile(path, []byte("# Changelog\n\n## 0.1.0\n\n- one\n"), 0o644))
	cl, created, err = LoadOrNew(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, cl.Versions(2), 1)
}

func TestEnsureSpacing(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"collapses blank runs":    {in: "a\n\n\n\nb\n", want: "a\n\nb\n"},
		"single trailing newline": {in: "a\n\n\n", want: "a\n"},
		"adds missing newline":    {in: "a", want: "a\n"},
		"already normalized":      {in: "a\n\nb\n", want: "a\n\nb\n"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EnsureSpacing(tt.in))
		})
	}
}
