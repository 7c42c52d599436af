package markdown

import "strings"

// Document is an ordered sequence of blocks. A Document owns its block slice;
// callers mutate it only through the splice methods below so that index
// arithmetic stays in one place.
type Document struct {
	Blocks []Block
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Render serializes the document back to markdown text. Rendering is
// deterministic: every block contributes its raw text followed by a newline,
// and blank-line markers contribute a bare newline. Rendering the same
// document twice yields identical text.
func (d *Document) Render() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		if blk.Kind == KindBlankLine {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(blk.Raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// Append adds blocks to the end of the document.
func (d *Document) Append(blocks ...Block) {
	d.Blocks = append(d.Blocks, blocks...)
}

// InsertAt splices blocks into the document before index i. An index at or
// beyond the current length appends.
func (d *Document) InsertAt(i int, blocks ...Block) {
	if i < 0 {
		i = 0
	}
	if i >= len(d.Blocks) {
		d.Blocks = append(d.Blocks, blocks...)
		return
	}
	tail := make([]Block, len(d.Blocks[i:]))
	copy(tail, d.Blocks[i:])
	d.Blocks = append(d.Blocks[:i], blocks...)
	d.Blocks = append(d.Blocks, tail...)
}

// RemoveRange removes the blocks in [i, j). The range is clamped to the
// document bounds; an empty or inverted range is a no-op.
func (d *Document) RemoveRange(i, j int) {
	if i < 0 {
		i = 0
	}
	if j > len(d.Blocks) {
		j = len(d.Blocks)
	}
	if i >= j {
		return
	}
	d.Blocks = append(d.Blocks[:i], d.Blocks[j:]...)
}
