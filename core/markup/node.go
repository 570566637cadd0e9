// Package markup converts documents to and from a nested markup tree.
//
// The tree has a root carrying the block language and meta, one paragraph
// per code line, text leaves and wrapper or class nodes for annotations.
// Line annotations wrap runs of paragraphs; char and document annotations
// wrap runs of text inside a paragraph.
package markup

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// NodeType identifies the kind of a tree node.
type NodeType int

// Node types.
const (
	// NodeRoot is the code block itself.
	NodeRoot NodeType = iota

	// NodeParagraph holds the content of one code line.
	NodeParagraph

	// NodeText is a run of code text.
	NodeText

	// NodeBreak starts a new line inside a paragraph.
	NodeBreak

	// NodeWrapper is a render annotation.
	NodeWrapper

	// NodeClass is a class annotation.
	NodeClass

	// NodeElement is any other element. Only its content is decoded.
	NodeElement
)

var nodeTypeNames = []string{"root", "paragraph", "text", "break", "wrapper", "class", "element"}

func (t NodeType) String() string {
	if int(t) < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	if int(t) < 0 || int(t) >= len(nodeTypeNames) {
		return nil, fmt.Errorf("invalid node type %d", int(t))
	}
	return []byte(nodeTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(text []byte) error {
	for i, name := range nodeTypeNames {
		if name == string(text) {
			*t = NodeType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node type %q", text)
}

// Node is one node of the markup tree.
type Node struct {
	Type NodeType `json:"type"`

	// Name is the annotation name for wrapper and class nodes and the
	// element name for other elements.
	Name string `json:"name,omitempty"`

	// Target is the wrapper component or the class token.
	Target string `json:"target,omitempty"`

	// Scope is the scope of the annotation a wrapper or class node stands for.
	Scope ir.Scope `json:"scope,omitempty"`

	// Text is the content of a text node.
	Text string `json:"text,omitempty"`

	Attributes ir.Attributes `json:"attributes,omitempty"`

	// Lang and Meta are only set on the root.
	Lang string  `json:"lang,omitempty"`
	Meta ir.Meta `json:"meta,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// IsAnnotation returns true for wrapper and class nodes.
func (n *Node) IsAnnotation() bool {
	return n.Type == NodeWrapper || n.Type == NodeClass
}

// PlainText returns the concatenated text below n. Breaks and paragraph
// boundaries become "\n".
func (n *Node) PlainText() string {
	var lines []string
	var cur strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Type {
		case NodeText:
			cur.WriteString(n.Text)
		case NodeBreak:
			lines = append(lines, cur.String())
			cur.Reset()
		default:
			for _, c := range n.Children {
				walk(c)
			}
			if n.Type == NodeParagraph {
				lines = append(lines, cur.String())
				cur.Reset()
			}
		}
	}
	walk(n)
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n")
}

// Count returns the number of nodes of type t below and including n.
func (n *Node) Count(t NodeType) int {
	c := 0
	if n.Type == t {
		c++
	}
	for _, child := range n.Children {
		c += child.Count(t)
	}
	return c
}

func annotationNode(def registry.Item, name string, scope ir.Scope, attrs ir.Attributes) *Node {
	t := NodeWrapper
	if def.Kind == ir.KindClass {
		t = NodeClass
	}
	return &Node{Type: t, Name: name, Target: def.Target(), Scope: scope, Attributes: def.WithProps(attrs)}
}
