package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// md is the shared goldmark instance. Only its parser is used; rendering is
// done from the recovered source spans, never through goldmark's renderer.
var md = goldmark.New()

// Parse parses markdown text into a block-level document. The parse is
// permissive: any input yields a document, and every block that goldmark
// recognizes keeps its verbatim source text. Blank source lines between
// blocks become BlankLine markers, one per line.
func Parse(source string) *Document {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	if source == "" {
		return NewDocument()
	}
	src := []byte(source)
	root := md.Parser().Parse(text.NewReader(src))

	lineStarts := indexLines(src)
	doc := NewDocument()

	// Collect the top-level block nodes with the source line each starts on.
	type located struct {
		node      ast.Node
		startLine int
		lastLine  int
	}
	var nodes []located
	prevLast := -1
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		start, stop, ok := nodeSpan(n, src)
		var startLine, lastLine int
		if ok {
			startLine = lineOf(lineStarts, start)
			lastLine = lineOf(lineStarts, maxOffset(stop-1, start))
			if fence, up := fenceLineAbove(n, src, lineStarts, startLine, prevLast); fence {
				startLine = up
			}
		} else {
			// Blocks with no text segments (thematic breaks, empty fenced
			// code blocks, bare headings) start at the first non-blank line
			// after the previous block's content.
			startLine = firstNonBlankLine(src, lineStarts, prevLast+1)
			lastLine = startLine
		}
		nodes = append(nodes, located{node: n, startLine: startLine, lastLine: lastLine})
		prevLast = lastLine
	}

	// Leading blank lines before the first block.
	firstLine := len(lineStarts)
	if len(nodes) > 0 {
		firstLine = nodes[0].startLine
	}
	for i := 0; i < firstLine; i++ {
		if isBlankLine(src, lineStarts, i) {
			doc.Append(Blank())
		}
	}

	// Each block's region runs from its start line up to the next block's
	// start line (or end of input). Trailing blank lines in a region are
	// emitted as BlankLine markers; interior blank lines stay in the block.
	for i, loc := range nodes {
		regionEnd := len(src)
		if i+1 < len(nodes) {
			regionEnd = lineStarts[nodes[i+1].startLine]
		}
		region := src[lineStarts[loc.startLine]:regionEnd]
		raw, blanks := splitTrailingBlanks(region)
		doc.Append(blockFor(loc.node, raw, src))
		for b := 0; b < blanks; b++ {
			doc.Append(Blank())
		}
	}

	return doc
}

// ParseBlocks parses a markdown fragment and returns its blocks. Used when
// synthesizing content (e.g. rendered change lines) that must live in the
// same block model as parsed documents.
func ParseBlocks(fragment string) []Block {
	return Parse(fragment).Blocks
}

// blockFor classifies a goldmark node and pairs it with its raw source text.
func blockFor(n ast.Node, raw string, src []byte) Block {
	switch n.Kind() {
	case ast.KindHeading:
		h := n.(*ast.Heading)
		return Block{Kind: KindHeading, Level: h.Level, Title: headingTitle(h, src), Raw: raw}
	case ast.KindList:
		return Block{Kind: KindList, Raw: raw}
	case ast.KindHTMLBlock:
		return Block{Kind: KindHTMLBlock, Raw: raw}
	case ast.KindParagraph:
		return Block{Kind: KindParagraph, Raw: raw}
	default:
		return Block{Kind: KindOther, Raw: raw}
	}
}

// headingTitle renders the heading's first inline child as plain text.
// A heading with no inline children has no derivable title.
func headingTitle(h *ast.Heading, src []byte) string {
	first := h.FirstChild()
	if first == nil {
		return ""
	}
	return strings.TrimSpace(string(nodeText(first, src)))
}

// nodeText concatenates the text segments beneath a node.
func nodeText(n ast.Node, src []byte) []byte {
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Value(src)
	}
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}

// nodeSpan returns the smallest byte range covering every text segment in
// the node's subtree. ok is false when the subtree holds no segments.
func nodeSpan(n ast.Node, src []byte) (start, stop int, ok bool) {
	start, stop = len(src), 0
	walk := func(c ast.Node) {
		if c.Type() == ast.TypeBlock || c.Type() == ast.TypeDocument {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				start = minOffset(start, seg.Start)
				stop = maxOffset(stop, seg.Stop)
				ok = true
			}
		}
		if t, isText := c.(*ast.Text); isText {
			start = minOffset(start, t.Segment.Start)
			stop = maxOffset(stop, t.Segment.Stop)
			ok = true
		}
		if h, isHTML := c.(*ast.HTMLBlock); isHTML && h.HasClosure() {
			start = minOffset(start, h.ClosureLine.Start)
			stop = maxOffset(stop, h.ClosureLine.Stop)
			ok = true
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			walk(c)
		}
		return ast.WalkContinue, nil
	})
	if !ok {
		return 0, 0, false
	}
	return start, stop, true
}

// fenceLineAbove reports whether a fenced code block's opening fence sits on
// the line above its first content segment, and returns that line.
func fenceLineAbove(n ast.Node, src []byte, lineStarts []int, startLine, prevLast int) (bool, int) {
	if n.Kind() != ast.KindFencedCodeBlock || startLine == 0 || startLine-1 <= prevLast {
		return false, 0
	}
	line := strings.TrimSpace(lineText(src, lineStarts, startLine-1))
	if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
		return true, startLine - 1
	}
	return false, 0
}

// splitTrailingBlanks strips trailing blank lines from a region, returning
// the block's raw text (no trailing newline) and the number of blanks.
func splitTrailingBlanks(region []byte) (string, int) {
	s := strings.TrimSuffix(string(region), "\n")
	lines := strings.Split(s, "\n")
	blanks := 0
	for len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
		blanks++
	}
	return strings.Join(lines, "\n"), blanks
}

// indexLines returns the byte offset of the start of each line.
func indexLines(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the index of the line containing the byte offset.
func lineOf(lineStarts []int, offset int) int {
	return sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	}) - 1
}

// lineText returns the text of line i without its trailing newline.
func lineText(src []byte, lineStarts []int, i int) string {
	start := lineStarts[i]
	end := len(src)
	if i+1 < len(lineStarts) {
		end = lineStarts[i+1]
	}
	return strings.TrimSuffix(string(src[start:end]), "\n")
}

// isBlankLine reports whether line i contains only whitespace.
func isBlankLine(src []byte, lineStarts []int, i int) bool {
	return strings.TrimSpace(lineText(src, lineStarts, i)) == ""
}

// firstNonBlankLine returns the first non-blank line at or after from,
// clamped to the last line.
func firstNonBlankLine(src []byte, lineStarts []int, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(lineStarts); i++ {
		if !isBlankLine(src, lineStarts, i) {
			return i
		}
	}
	return len(lineStarts) - 1
}

func minOffset(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxOffset(a, b int) int {
	if a > b {
		return a
	}
	return b
}
