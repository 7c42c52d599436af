package changelog

import "github.com/ariel-frischer/relnote/internal/markdown"

// Section is a heading plus the blocks following it until the next heading
// at the same or a shallower level. Children may include deeper headings,
// which stay ordinary blocks until extracted at their own level.
type Section struct {
	Heading  markdown.Block
	Title    string
	Level    int
	Children []markdown.Block
}

// ExtractSections scans a flat block sequence for sections at the target
// heading level. Blocks between headings attach to the most recently opened
// section. A shallower heading closes the open section without opening a new
// one (callers pass only the children of an already-opened scope, so
// shallower headings belong to an ancestor). A deeper heading is an ordinary
// child block. Blank-line markers are dropped: spacing is regenerated on
// output, not preserved. A heading with no inline content has no derivable
// title and is ignored entirely.
func ExtractSections(blocks []markdown.Block, level int) []Section {
	var sections []Section
	current := -1

	for _, b := range blocks {
		if b.Kind == markdown.KindBlankLine {
			continue
		}
		if b.Kind == markdown.KindHeading {
			switch {
			case b.Level < level:
				current = -1
			case b.Level > level:
				if current >= 0 {
					sections[current].Children = append(sections[current].Children, b)
				}
			default:
				if b.Title == "" {
					continue
				}
				sections = append(sections, Section{Heading: b, Title: b.Title, Level: level})
				current = len(sections) - 1
			}
			continue
		}
		if current >= 0 {
			sections[current].Children = append(sections[current].Children, b)
		}
	}

	return sections
}

// AsDocument renders the section as a standalone document: heading, blank
// line, then the section body.
func (s *Section) AsDocument() *markdown.Document {
	doc := markdown.NewDocument()
	doc.Append(s.Heading, markdown.Blank())
	doc.Append(s.Children...)
	return doc
}
