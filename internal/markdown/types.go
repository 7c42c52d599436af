// Package markdown provides a block-level markdown document model for
// changelog editing. Documents are parsed with goldmark, but each block keeps
// its verbatim source text so that rendering a document reproduces every
// block it did not synthesize byte-for-byte. Only the block structure is
// modeled; inline content stays inside each block's raw text.
package markdown

import "strings"

// Kind identifies the block-level type of a Block.
type Kind int

const (
	// KindParagraph is a run of inline text.
	KindParagraph Kind = iota
	// KindHeading is an ATX or setext heading.
	KindHeading
	// KindList is a bullet or ordered list, including all of its items.
	KindList
	// KindHTMLBlock is a raw HTML block, such as an HTML comment.
	KindHTMLBlock
	// KindBlankLine marks a single blank source line. Blank lines carry no
	// text; they exist so spacing between blocks survives round-trips.
	KindBlankLine
	// KindOther covers any block type the changelog model does not need to
	// distinguish (code blocks, block quotes, thematic breaks, ...).
	KindOther
)

// String returns a human-readable name for the block kind.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindHTMLBlock:
		return "html"
	case KindBlankLine:
		return "blank"
	default:
		return "other"
	}
}

// Block is a single block-level element. Raw holds the exact source text of
// the block without a trailing newline; rendering appends one newline per
// line. Level and Title are only meaningful for headings.
type Block struct {
	Kind  Kind
	Level int
	Title string
	Raw   string
}

// IsHeading reports whether the block is a heading at the given level.
func (b Block) IsHeading(level int) bool {
	return b.Kind == KindHeading && b.Level == level
}

// NewHeading synthesizes an ATX heading block. The title becomes the sole
// inline content of the heading.
func NewHeading(title string, level int) Block {
	return Block{
		Kind:  KindHeading,
		Level: level,
		Title: title,
		Raw:   strings.Repeat("#", level) + " " + title,
	}
}

// Blank synthesizes a blank-line marker block.
func Blank() Block {
	return Block{Kind: KindBlankLine}
}

// HTMLComment synthesizes a raw HTML comment block.
func HTMLComment(text string) Block {
	return Block{Kind: KindHTMLBlock, Raw: "<!-- " + text + " -->"}
}

// Paragraph synthesizes a paragraph block from a single line of text.
func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Raw: text}
}
