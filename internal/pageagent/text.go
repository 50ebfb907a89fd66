package pageagent

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// VisibleText walks the text nodes under root in document order, trims each, and joins the
// non-empty ones with single spaces. It returns nil when no text node has content.
func VisibleText(root *html.Node) *string {
	if root == nil {
		return nil
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				parts = append(parts, trimmed)
			}
			return
		case html.ElementNode:
			if hidden(n) {
				return
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	if len(parts) == 0 {
		return nil
	}
	text := strings.Join(parts, " ")
	return &text
}

func hidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}
