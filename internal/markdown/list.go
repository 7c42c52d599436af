package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ListItems returns the text content of each item in a list block, one entry
// per item. Item text is the raw markdown after the list marker, with
// continuation lines joined by a single space. Non-list blocks yield nil.
func ListItems(b Block) []string {
	if b.Kind != KindList {
		return nil
	}
	src := []byte(b.Raw + "\n")
	root := md.Parser().Parse(text.NewReader(src))

	var items []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		list, ok := n.(*ast.List)
		if !ok {
			continue
		}
		for item := list.FirstChild(); item != nil; item = item.NextSibling() {
			items = append(items, itemText(item, src))
		}
	}
	return items
}

// itemText joins the source lines of a list item's child blocks.
func itemText(item ast.Node, src []byte) string {
	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		lines := c.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimSpace(string(seg.Value(src)))
			if line != "" {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, " ")
}
