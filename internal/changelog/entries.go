package changelog

import (
	"strings"

	"github.com/ariel-frischer/relnote/internal/markdown"
)

// Sections returns the subsections nested one level below the version
// heading (the labeled change sections and the contributors list).
func (vs *VersionSection) Sections() []Section {
	return ExtractSections(vs.Children, vs.Level+1)
}

// AllEntries returns the rendered text of every list item across the version
// section's subsections, in document order. Callers use substring
// containment over these to detect changes that are already recorded.
func (vs *VersionSection) AllEntries() []string {
	var entries []string
	for _, s := range vs.Sections() {
		for _, b := range s.Children {
			if b.Kind == markdown.KindList {
				entries = append(entries, markdown.ListItems(b)...)
			}
		}
	}
	return entries
}

// ContainsReference reports whether any existing entry mentions the given
// reference text (typically "[#123]"). This is a textual heuristic: entries
// are rendered from a fixed template that always embeds the number
// reference, so containment is reliable for entries this tool produced.
func (vs *VersionSection) ContainsReference(ref string) bool {
	for _, entry := range vs.AllEntries() {
		if strings.Contains(entry, ref) {
			return true
		}
	}
	return false
}
