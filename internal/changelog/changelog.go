package changelog

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ariel-frischer/relnote/internal/markdown"
	"github.com/ariel-frischer/relnote/internal/versions"
)

// DefaultHeadingLevel is the heading level marking version sections.
const DefaultHeadingLevel = 2

// noChangesMarker makes an empty release visible in the rendered document.
const noChangesMarker = "No changes"

// Changelog is the persistent changelog document. Version sections appear in
// strictly descending version order at a single heading level, at most one
// per distinct version string.
type Changelog struct {
	doc *markdown.Document
}

// New returns an empty changelog seeded with a title heading, ready for
// version sections to be inserted.
func New() *Changelog {
	doc := markdown.NewDocument()
	doc.Append(markdown.NewHeading("Changelog", 1), markdown.Blank(), markdown.Blank())
	return &Changelog{doc: doc}
}

// FromMarkdown parses changelog text. Parsing is permissive: any markdown is
// accepted, and missing version sections surface as lookup absence, never as
// errors.
func FromMarkdown(text string) *Changelog {
	return &Changelog{doc: markdown.Parse(text)}
}

// Load reads a changelog file.
func Load(path string) (*Changelog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading changelog file: %w", err)
	}
	return FromMarkdown(string(data)), nil
}

// LoadOrNew reads a changelog file, returning a fresh changelog when the
// file does not exist. created reports which happened.
func LoadOrNew(path string) (c *Changelog, created bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading changelog file: %w", err)
	}
	return FromMarkdown(string(data)), false, nil
}

// ToMarkdown serializes the changelog with normalized spacing, suitable for
// writing back to disk.
func (c *Changelog) ToMarkdown() string {
	return EnsureSpacing(c.doc.Render())
}

// Document exposes the underlying block document.
func (c *Changelog) Document() *markdown.Document {
	return c.doc
}

// Versions extracts the version sections at the given heading level, in
// document order (newest first for a well-formed changelog).
func (c *Changelog) Versions(level int) []*VersionSection {
	sections := ExtractSections(c.doc.Blocks, level)
	out := make([]*VersionSection, len(sections))
	for i, s := range sections {
		out[i] = versionSectionFrom(s)
	}
	return out
}

// GetVersionSection returns the section whose heading renders the same
// version string, or nil when absent.
func (c *Changelog) GetVersionSection(version string, level int) *VersionSection {
	want := versions.Normalize(version)
	for _, s := range c.Versions(level) {
		if versions.Normalize(s.Version) == want {
			return s
		}
	}
	return nil
}

// InsertVersionSection merges a version section into the changelog. An
// existing section for the same version string is replaced in place;
// otherwise the section is inserted before the first existing entry with an
// older version, keeping entries in descending order. Nothing outside the
// affected block range is touched.
func (c *Changelog) InsertVersionSection(section *VersionSection, level int) {
	insertAt, replaced := c.removeExisting(section, level)
	if !replaced {
		insertAt = c.insertionPoint(section, level)
	}

	blocks := make([]markdown.Block, 0, len(section.Children)+4)
	blocks = append(blocks, section.Heading, markdown.Blank())
	if len(section.Children) == 0 {
		// An empty release must stay visible in the rendered document.
		blocks = append(blocks, markdown.HTMLComment(noChangesMarker), markdown.Blank())
	} else {
		blocks = append(blocks, section.Children...)
	}
	c.doc.InsertAt(insertAt, blocks...)
}

// removeExisting removes the block range [start, end) of a section with the
// same version string, where end is the next heading at the same level or
// the end of the document. It returns the removal start index when a
// replacement happened.
func (c *Changelog) removeExisting(section *VersionSection, level int) (int, bool) {
	want := versions.Normalize(section.Version)
	start, end := -1, len(c.doc.Blocks)

	for i, b := range c.doc.Blocks {
		if !b.IsHeading(level) {
			continue
		}
		if start >= 0 {
			end = i
			break
		}
		if versions.Normalize(b.Title) == want {
			start = i
		}
	}

	if start < 0 {
		return 0, false
	}
	c.doc.RemoveRange(start, end)
	return start, true
}

// insertionPoint scans headings at the target level for the first entry
// strictly older than the section's version and returns its index. An
// unparseable existing heading acts as a boundary: scanning stops there
// rather than risking a misordered insert. When the new version itself is
// not comparable no ordering can be established and the section goes to the
// top of the document.
func (c *Changelog) insertionPoint(section *VersionSection, level int) int {
	if section.parsed == nil {
		return 0
	}
	for i, b := range c.doc.Blocks {
		if !b.IsHeading(level) {
			continue
		}
		existing, err := semver.NewVersion(versions.Normalize(b.Title))
		if err != nil {
			return i
		}
		if existing.LessThan(section.parsed) {
			return i
		}
	}
	return len(c.doc.Blocks)
}

// EnsureSpacing collapses runs of blank lines to one and guarantees a single
// trailing newline.
func EnsureSpacing(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimRight(text, "\n") + "\n"
}
