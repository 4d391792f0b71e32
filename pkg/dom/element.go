package dom

import (
	"golang.org/x/net/html"
)

// Element is an element borrowed from a document.
type Element interface {
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
}

// Node is the Element implementation of Document. Two Nodes are equal
// when they refer to the same underlying html.Node.
type Node struct {
	n *html.Node
}

// Attr implements Element.
func (e Node) Attr(name string) (string, bool) {
	if e.n == nil {
		return "", false
	}
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
