package changelog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/ariel-frischer/relnote/internal/config"
	"github.com/ariel-frischer/relnote/internal/github"
	"github.com/ariel-frischer/relnote/internal/markdown"
	"github.com/ariel-frischer/relnote/internal/versions"
)

// VersionSection is a section whose heading denotes a release version. The
// parsed version is nil when the heading is not a comparable version, which
// only affects insertion ordering, never replacement.
type VersionSection struct {
	Section
	Version string
	parsed  *semver.Version
}

// versionSectionFrom wraps an extracted section, parsing its title.
func versionSectionFrom(s Section) *VersionSection {
	vs := &VersionSection{Section: s, Version: s.Title}
	if v, err := semver.NewVersion(versions.Normalize(s.Title)); err == nil {
		vs.parsed = v
	}
	return vs
}

// BuildOptions filter and annotate a generated version section.
type BuildOptions struct {
	// OnlySections limits output to the named sections. Names match either
	// a section's title or one of its labels. Deselected sections are
	// skipped during classification, so a pull request may still land in a
	// later selected section; one matching no selected section is omitted,
	// not routed to the fallback.
	OnlySections []string
	// WithoutSections drops the named sections. A pull request matching an
	// excluded section is dropped entirely, even when another section would
	// also match it.
	WithoutSections []string
	// ReleaseDate overrides the release date line. The zero value means
	// "today" when the release date line is enabled.
	ReleaseDate time.Time
}

// FromPullRequests builds a fresh version section from a set of pull
// requests, grouped into the configured sections by label precedence, with a
// contributors list appended. The section is never mutated after building:
// it is either spliced into a changelog or exported standalone.
func FromPullRequests(version *semver.Version, cfg *config.Config, pulls []github.PullRequest, opts BuildOptions) *VersionSection {
	level := cfg.HeadingLevel
	if level == 0 {
		level = DefaultHeadingLevel
	}
	format, _ := versions.ParseFormat(cfg.VersionFormat)
	rendered := versions.Render(version, format)

	specs := cfg.OrderedSections()
	buckets := classify(pulls, cfg, specs, opts)

	var children []markdown.Block

	if cfg.ChangelogReleaseDate || !opts.ReleaseDate.IsZero() {
		date := opts.ReleaseDate
		if date.IsZero() {
			date = time.Now()
		}
		children = append(children,
			markdown.Paragraph("Released on "+date.Format("2006-01-02")+"."),
			markdown.Blank(),
		)
	}

	titles := append(sectionTitles(specs), fallbackTitle(cfg))
	for i, title := range titles {
		records := buckets[i]
		if len(records) == 0 {
			continue
		}
		sort.SliceStable(records, func(a, b int) bool {
			return records[a].Title < records[b].Title
		})
		children = append(children, changesSection(title, level+1, records, cfg)...)
	}

	if cfg.ChangelogContributors {
		children = append(children, contributorBlocks(pulls, cfg, level+1)...)
	}

	return &VersionSection{
		Section: Section{
			Heading:  markdown.NewHeading(rendered, level),
			Title:    rendered,
			Level:    level,
			Children: children,
		},
		Version: rendered,
		parsed:  version,
	}
}

// classify routes pull requests into one bucket per configured section plus
// a trailing fallback bucket. A pull request matching any section excluded
// via WithoutSections is dropped entirely, even when it would also match a
// kept section. Otherwise sections are walked in mapping order with
// deselected sections skipped, so the first selected matching section wins
// when a pull request carries several section labels.
func classify(pulls []github.PullRequest, cfg *config.Config, specs []config.SectionSpec, opts BuildOptions) [][]github.PullRequest {
	buckets := make([][]github.PullRequest, len(specs)+1)
	ignored := cfg.GlobalIgnoredLabels()
	required := cfg.RequireLabels

	for _, pr := range dedupe(pulls) {
		if pr.HasAnyLabel(ignored) {
			continue
		}
		if len(required) > 0 && !hasAny(pr, required) {
			continue
		}
		if excludedByWithout(pr, specs, opts.WithoutSections) {
			continue
		}

		matched := false
		for i, spec := range specs {
			if len(opts.OnlySections) > 0 && !nameMatches(spec, opts.OnlySections) {
				continue
			}
			if !hasAny(pr, spec.Labels) {
				continue
			}
			buckets[i] = append(buckets[i], pr)
			matched = true
			break
		}
		if !matched && len(opts.OnlySections) == 0 {
			buckets[len(specs)] = append(buckets[len(specs)], pr)
		}
	}

	return buckets
}

// excludedByWithout reports whether the without filter drops the pull request
// outright: one of its labels is named directly in the exclusion list, or it
// matches a section the list names by title or label.
func excludedByWithout(pr github.PullRequest, specs []config.SectionSpec, without []string) bool {
	if len(without) == 0 {
		return false
	}
	for _, name := range without {
		if pr.HasLabel(name) {
			return true
		}
	}
	for _, spec := range specs {
		if nameMatches(spec, without) && hasAny(pr, spec.Labels) {
			return true
		}
	}
	return false
}

// dedupe drops duplicate pull requests (same number) and returns the rest in
// stable ascending-number order.
func dedupe(pulls []github.PullRequest) []github.PullRequest {
	out := make([]github.PullRequest, 0, len(pulls))
	seen := make(map[int]struct{}, len(pulls))
	for _, pr := range pulls {
		if _, ok := seen[pr.Number]; ok {
			continue
		}
		seen[pr.Number] = struct{}{}
		out = append(out, pr)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Number < out[b].Number
	})
	return out
}

// nameMatches reports whether any of the names identifies the section, by
// title (case-insensitive) or by one of its labels.
func nameMatches(spec config.SectionSpec, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(name, spec.Title) {
			return true
		}
		for _, label := range spec.Labels {
			if name == label {
				return true
			}
		}
	}
	return false
}

func hasAny(pr github.PullRequest, labels []string) bool {
	for _, l := range labels {
		if pr.HasLabel(l) {
			return true
		}
	}
	return false
}

func sectionTitles(specs []config.SectionSpec) []string {
	titles := make([]string, len(specs))
	for i, s := range specs {
		titles[i] = s.Title
	}
	return titles
}

func fallbackTitle(cfg *config.Config) string {
	if cfg.UnknownSectionTitle != "" {
		return cfg.UnknownSectionTitle
	}
	return "Other changes"
}

// changesSection renders one labeled section: a heading followed by one
// change line per pull request.
func changesSection(title string, level int, records []github.PullRequest, cfg *config.Config) []markdown.Block {
	lines := make([]string, len(records))
	for i, pr := range records {
		lines[i] = renderChangeLine(pr, cfg)
	}

	blocks := []markdown.Block{markdown.NewHeading(title, level), markdown.Blank()}
	blocks = append(blocks, markdown.ParseBlocks(strings.Join(lines, "\n"))...)
	blocks = append(blocks, markdown.Blank())
	return blocks
}

// renderChangeLine applies the configured change template to a pull request.
// Supported placeholders: {title}, {number}, {url}, {author}.
func renderChangeLine(pr github.PullRequest, cfg *config.Config) string {
	template := cfg.ChangeTemplate
	if template == "" {
		template = "- {title} ([#{number}]({url}))"
	}

	title := pr.Title
	for _, prefix := range cfg.TrimTitlePrefixes {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimSpace(strings.TrimPrefix(title, prefix))
			break
		}
	}

	replacer := strings.NewReplacer(
		"{title}", title,
		"{number}", strconv.Itoa(pr.Number),
		"{url}", pr.URL(),
		"{author}", pr.Author,
	)
	return replacer.Replace(template)
}

// contributorBlocks builds the Contributors section from every input pull
// request: authorship credit is independent of section filtering. It is
// empty when no eligible author remains.
func contributorBlocks(pulls []github.PullRequest, cfg *config.Config, level int) []markdown.Block {
	authors := eligibleAuthors(pulls, cfg)
	if len(authors) == 0 {
		return nil
	}

	lines := make([]string, len(authors))
	for i, author := range authors {
		lines[i] = fmt.Sprintf("- [@%s](https://github.com/%s)", author, author)
	}

	blocks := []markdown.Block{markdown.NewHeading("Contributors", level), markdown.Blank()}
	blocks = append(blocks, markdown.ParseBlocks(strings.Join(lines, "\n"))...)
	blocks = append(blocks, markdown.Blank())
	return blocks
}

// eligibleAuthors returns the unique, sorted authors not in the ignore set.
func eligibleAuthors(pulls []github.PullRequest, cfg *config.Config) []string {
	ignored := cfg.IgnoredAuthors()
	set := make(map[string]struct{})
	for _, pr := range pulls {
		if pr.Author == "" {
			continue
		}
		if _, ok := ignored[pr.Author]; ok {
			continue
		}
		set[pr.Author] = struct{}{}
	}

	authors := make([]string, 0, len(set))
	for a := range set {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	return authors
}

// Contributors renders a standalone contributors list for a set of pull
// requests, for the contributors command.
func Contributors(pulls []github.PullRequest, cfg *config.Config, level int) string {
	authors := eligibleAuthors(pulls, cfg)
	if len(authors) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("#", level) + " Contributors\n")
	for _, author := range authors {
		fmt.Fprintf(&b, "- [@%s](https://github.com/%s)\n", author, author)
	}
	return b.String()
}
