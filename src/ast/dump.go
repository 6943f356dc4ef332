package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the tree rooted at n as indented text, one node per line
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, 0)
}

func dump(w io.Writer, n *Node, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n); err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := dump(w, c, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// Format renders the tree rooted at n on one line: leaves with a value are
// written `kind:value` and inner nodes `kind(child child ...)`
func Format(n *Node) string {
	sb := &strings.Builder{}
	format(sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n *Node) {
	label := n.Kind.String()
	if n.Kind == Raw {
		label = n.Symbol
	}

	sb.WriteString(label)
	if n.Value != "" && n.IsLeaf() {
		sb.WriteRune(':')
		sb.WriteString(n.Value)
	}

	if n.IsLeaf() {
		return
	}

	sb.WriteRune('(')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteRune(' ')
		}

		format(sb, c)
	}
	sb.WriteRune(')')
}

// Walk visits the tree rooted at n in pre-order.  Children of a node are not
// visited if fn returns false for it.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.Children {
		Walk(c, fn)
	}
}
