package changelog

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ariel-frischer/relnote/internal/versions"
)

// textHeading is a version heading found in raw changelog text.
type textHeading struct {
	offset int
	title  string
	parsed *semver.Version
}

func scanTextHeadings(changelog string, level int) []textHeading {
	prefix := strings.Repeat("#", level) + " "
	var headings []textHeading

	offset := 0
	for _, line := range strings.SplitAfter(changelog, "\n") {
		trimmed := strings.TrimRight(line, "\n")
		if strings.HasPrefix(trimmed, prefix) {
			h := textHeading{offset: offset, title: strings.TrimSpace(trimmed[len(prefix):])}
			if v, err := semver.NewVersion(versions.Normalize(h.title)); err == nil {
				h.parsed = v
			}
			headings = append(headings, h)
		}
		offset += len(line)
	}
	return headings
}

// VersionsFromText lists the parseable versions named by headings at the
// given level in raw changelog text, in descending order.
func VersionsFromText(changelog string, level int) []*semver.Version {
	var raw []string
	for _, h := range scanTextHeadings(changelog, level) {
		raw = append(raw, h.title)
	}
	return versions.FromStrings(raw)
}

// ExtractEntry returns the byte-exact slice of raw changelog text for one
// version: from its heading line up to the heading of the next older version
// present in the text, or to end of text when it is the oldest. This is a
// textual extraction, not a tree walk, so the slice round-trips verbatim
// into an external release-notes field. The second result is false when the
// version's heading is not present.
func ExtractEntry(changelog, version string, level int) (string, bool) {
	headings := scanTextHeadings(changelog, level)
	want := versions.Normalize(version)

	start := -1
	var parsed *semver.Version
	for _, h := range headings {
		if versions.Normalize(h.title) == want {
			start = h.offset
			parsed = h.parsed
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(changelog)
	if parsed != nil {
		var all []*semver.Version
		for _, h := range headings {
			if h.parsed != nil {
				all = append(all, h.parsed)
			}
		}
		if prev := versions.Previous(all, parsed); prev != nil {
			for _, h := range headings {
				if h.parsed != nil && h.parsed.Equal(prev) && h.offset > start {
					end = h.offset
					break
				}
			}
		}
	}
	return changelog[start:end], true
}

// EntryToStandalone rewrites an extracted entry for publishing outside the
// changelog: the version heading on the first line becomes a generic
// "Changes" heading with a provenance comment, and subheadings keep their
// levels. Extracted entries always start at their own heading, so only the
// first line is touched.
func EntryToStandalone(entry string, level int) string {
	prefix := strings.Repeat("#", level) + " "
	i := strings.Index(entry, "\n")
	if i < 0 || !strings.HasPrefix(entry, prefix) {
		return entry
	}
	return prefix + "Changes\n<!-- Generated from the CHANGELOG file -->" + entry[i:]
}
