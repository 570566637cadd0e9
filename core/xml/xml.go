// Package xml provides XML parsing, XPath lookup, well-formedness checks and
// an escaping writer for the markup interchange form.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities, and entity expansion is
//     disabled during validation.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an element or text node.
type Node struct {
	node *xmlquery.Node
}

// Attr is one attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks that data is well-formed XML.
//
// Security: entity expansion is disabled (CWE-611).
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	depth, roots := 0, 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{Line: line, Column: col, Message: err.Error()})
			return result
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if roots != 1 {
		line, col := decoder.InputPos()
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("document must have exactly one root element, found %d", roots),
		})
	}
	return result
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d == nil || d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Name returns the element name, or "" for text.
func (n *Node) Name() string {
	if n.node == nil || n.node.Type != xmlquery.ElementNode {
		return ""
	}
	return n.node.Data
}

// IsText returns true for text and CDATA nodes.
func (n *Node) IsText() bool {
	return n.node != nil && (n.node.Type == xmlquery.TextNode || n.node.Type == xmlquery.CharDataNode)
}

// Text returns the text of a text node, or all text below an element.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	if n.IsText() {
		return n.node.Data
	}
	return n.node.InnerText()
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	return n.collect(func(c *xmlquery.Node) bool { return c.Type == xmlquery.ElementNode })
}

// Content returns the child elements and text nodes in document order.
// Comments and processing instructions are skipped.
func (n *Node) Content() []*Node {
	return n.collect(func(c *xmlquery.Node) bool {
		switch c.Type {
		case xmlquery.ElementNode, xmlquery.TextNode, xmlquery.CharDataNode:
			return true
		}
		return false
	})
}

func (n *Node) collect(keep func(*xmlquery.Node) bool) []*Node {
	if n.node == nil {
		return nil
	}
	var out []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if keep(child) {
			out = append(out, &Node{node: child})
		}
	}
	return out
}

// Attrs returns the attributes in document order.
func (n *Node) Attrs() []Attr {
	if n.node == nil {
		return nil
	}
	out := make([]Attr, 0, len(n.node.Attr))
	for _, a := range n.node.Attr {
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + name
		}
		out = append(out, Attr{Name: name, Value: a.Value})
	}
	return out
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n.node == nil {
		return "", false
	}
	for _, a := range n.node.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value, true
		}
	}
	return "", false
}
