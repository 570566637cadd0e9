package markup

import (
	"fmt"

	"github.com/FocuswithJustin/codemark/core/directive"
	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/xml"
)

// Element and attribute names of the XML form.
const (
	ElementBlock     = "codeblock"
	ElementParagraph = "p"
	ElementBreak     = "br"

	AttrLang   = "lang"
	AttrMeta   = "meta"
	AttrKind   = "data-kind"
	AttrTarget = "data-target"
	AttrScope  = "data-scope"
)

var reservedAttrs = map[string]bool{AttrKind: true, AttrTarget: true, AttrScope: true}

// MarshalXML writes the tree as XML. Annotation nodes become elements named
// after the annotation and carry data-kind, data-target and, for document
// scope, data-scope; their attributes are written as literal values. Text
// is written without any added whitespace.
//
// Annotation names that are not valid element names lose their element,
// and attribute keys that are not valid attribute names or collide with the
// data-* attributes are dropped; both are reported as L2. Characters XML
// cannot carry are written as U+FFFD and also reported as L2.
func MarshalXML(root *Node) ([]byte, *ir.LossReport) {
	report := ir.NewLossReport("markup", "xml")
	var w xml.Writer
	w.Declaration()

	children := []*Node{root}
	var attrs []xml.Attr
	if root != nil && root.Type == NodeRoot {
		children = root.Children
		if root.Lang != "" {
			attrs = append(attrs, xml.Attr{Name: AttrLang, Value: root.Lang})
		}
		if meta := directive.FormatMeta(root.Meta); meta != "" {
			checkText(meta, "meta", "meta", report)
			attrs = append(attrs, xml.Attr{Name: AttrMeta, Value: meta})
		}
	} else if root == nil {
		children = nil
	}

	w.Start(ElementBlock, attrs)
	for i, c := range children {
		writeNode(&w, c, fmt.Sprintf("children[%d]", i), report)
	}
	w.End(ElementBlock)
	return w.Bytes(), report
}

func writeNode(w *xml.Writer, n *Node, path string, report *ir.LossReport) {
	writeChildren := func() {
		for i, c := range n.Children {
			writeNode(w, c, fmt.Sprintf("%s.children[%d]", path, i), report)
		}
	}

	switch n.Type {
	case NodeText:
		checkText(n.Text, path, "text", report)
		w.Text(n.Text)
	case NodeBreak:
		w.Empty(ElementBreak, nil)
	case NodeParagraph:
		w.Start(ElementParagraph, nil)
		writeChildren()
		w.End(ElementParagraph)
	case NodeWrapper, NodeClass:
		if !xml.ValidName(n.Name) {
			report.Lose(ir.LossL2, ir.LostElement{
				Path:          path,
				ElementType:   "node",
				Reason:        "name is not a valid element name; kept its text",
				OriginalValue: n.Name,
			})
			writeChildren()
			return
		}
		w.Start(n.Name, annotationAttrs(n, path, report))
		writeChildren()
		w.End(n.Name)
	default:
		if !xml.ValidName(n.Name) {
			writeChildren()
			return
		}
		w.Start(n.Name, nil)
		writeChildren()
		w.End(n.Name)
	}
}

func annotationAttrs(n *Node, path string, report *ir.LossReport) []xml.Attr {
	kind := ir.KindRender
	if n.Type == NodeClass {
		kind = ir.KindClass
	}
	attrs := []xml.Attr{{Name: AttrKind, Value: string(kind)}}
	if n.Target != "" {
		attrs = append(attrs, xml.Attr{Name: AttrTarget, Value: n.Target})
	}
	if n.Scope == ir.ScopeDocument {
		attrs = append(attrs, xml.Attr{Name: AttrScope, Value: string(n.Scope)})
	}

	for _, attr := range n.Attributes {
		k := attr.Key
		attrPath := path + ".attributes." + k
		if reservedAttrs[k] || !xml.ValidName(k) {
			report.Lose(ir.LossL2, ir.LostElement{
				Path:          attrPath,
				ElementType:   "attribute",
				Reason:        "key cannot be written as an XML attribute",
				OriginalValue: attr.Value,
			})
			continue
		}
		value, err := directive.FormatValue(attr.Value)
		if err != nil {
			report.Lose(ir.LossL2, ir.LostElement{
				Path:        attrPath,
				ElementType: "attribute",
				Reason:      err.Error(),
			})
			continue
		}
		checkText(value, attrPath, "attribute", report)
		attrs = append(attrs, xml.Attr{Name: k, Value: value})
	}
	return attrs
}

func checkText(s, path, kind string, report *ir.LossReport) {
	if xml.ValidText(s) {
		return
	}
	report.Lose(ir.LossL2, ir.LostElement{
		Path:          path,
		ElementType:   kind,
		Reason:        "contains characters XML cannot carry; written as U+FFFD",
		OriginalValue: s,
	})
}

// UnmarshalXML reads the XML form back into a tree. The document must be
// well-formed with a codeblock root. Elements without data-kind other than
// p and br become NodeElement; their attributes are ignored.
func UnmarshalXML(data []byte) (*Node, error) {
	if res := xml.Validate(data); !res.Valid {
		perr := cerrors.NewParse("XML", "", res.Errors[0].Error())
		perr.Err = res.Errors[0]
		return nil, perr
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, cerrors.Wrap(err, "reading markup")
	}
	el := doc.Root()
	if el == nil || el.Name() != ElementBlock {
		name := ""
		if el != nil {
			name = el.Name()
		}
		return nil, cerrors.NewParse("XML", "", fmt.Sprintf("root element is %q, want %q", name, ElementBlock))
	}
	return readBlock(el), nil
}

// UnmarshalXMLAll reads every codeblock element found anywhere in a
// well-formed document, in document order. A codeblock nested in another
// is read only as part of the outer one.
func UnmarshalXMLAll(data []byte) ([]*Node, error) {
	if res := xml.Validate(data); !res.Valid {
		perr := cerrors.NewParse("XML", "", res.Errors[0].Error())
		perr.Err = res.Errors[0]
		return nil, perr
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, cerrors.Wrap(err, "reading markup")
	}
	blocks, err := doc.XPath("//" + ElementBlock + "[not(ancestor::" + ElementBlock + ")]")
	if err != nil {
		return nil, err
	}
	roots := make([]*Node, len(blocks))
	for i, el := range blocks {
		roots[i] = readBlock(el)
	}
	return roots, nil
}

func readBlock(el *xml.Node) *Node {
	root := &Node{Type: NodeRoot}
	root.Lang, _ = el.Attr(AttrLang)
	if meta, ok := el.Attr(AttrMeta); ok {
		root.Meta = directive.ParseMeta(meta)
	}
	root.Children = readContent(el, false)
	return root
}

func readContent(el *xml.Node, inline bool) []*Node {
	var out []*Node
	for _, c := range el.Content() {
		if c.IsText() {
			if text := c.Text(); text != "" {
				out = append(out, &Node{Type: NodeText, Text: text})
			}
			continue
		}
		out = append(out, readElement(c, inline))
	}
	return out
}

func readElement(el *xml.Node, inline bool) *Node {
	name := el.Name()
	kind, annotated := el.Attr(AttrKind)
	switch {
	case annotated:
		n := &Node{Type: NodeWrapper, Name: name}
		if ir.Kind(kind) == ir.KindClass {
			n.Type = NodeClass
		}
		n.Target, _ = el.Attr(AttrTarget)
		n.Scope = ir.ScopeLine
		if inline {
			n.Scope = ir.ScopeChar
			if s, ok := el.Attr(AttrScope); ok && ir.Scope(s) == ir.ScopeDocument {
				n.Scope = ir.ScopeDocument
			}
		}
		for _, a := range el.Attrs() {
			if reservedAttrs[a.Name] {
				continue
			}
			n.Attributes = n.Attributes.Set(a.Name, directive.ParseValue(a.Value))
		}
		n.Children = readContent(el, inline)
		return n
	case name == ElementParagraph && !inline:
		return &Node{Type: NodeParagraph, Children: readContent(el, true)}
	case name == ElementBreak:
		return &Node{Type: NodeBreak}
	default:
		return &Node{Type: NodeElement, Name: name, Children: readContent(el, inline)}
	}
}
