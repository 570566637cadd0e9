package markup

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Decode rebuilds a document from a markup tree.
//
// Paragraphs, breaks and "\n" inside text start new lines. A wrapper or
// class node becomes an annotation when the registry defines its name for
// the scope it appears in; an annotation that crosses a line break is
// split into one annotation per line. Any other node contributes only its
// text and is reported as L2. Orders are assigned in visit order, so for a
// tree produced by Encode the result equals ir.Canonical of the encoded
// document.
func Decode(root *Node, reg *registry.Registry) (*ir.Document, *ir.LossReport) {
	if reg == nil {
		reg = registry.Default()
	}
	d := &decoder{reg: reg, report: ir.NewLossReport("markup", "document")}

	doc := &ir.Document{}
	if root == nil {
		return doc, d.report
	}

	var b block
	if root.Type == NodeRoot {
		doc.Lang = root.Lang
		doc.Meta = root.Meta.Clone()
		b = d.block(root.Children, "children")
	} else {
		b = d.block([]*Node{root}, "")
	}
	doc.Lines = b.lines
	doc.Annotations = b.anns

	for i := range doc.Annotations {
		doc.Annotations[i].Order = i
	}
	offsets := doc.LineOffsets()
	next := 0
	for li := range doc.Lines {
		anns := doc.Lines[li].Annotations
		for i := range anns {
			anns[i].Range = anns[i].Range.Shift(offsets[li])
			anns[i].Order = next
			next++
		}
	}
	return doc, d.report
}

type decoder struct {
	reg    *registry.Registry
	report *ir.LossReport
}

// block is decoded block content. Line annotation ranges are relative to
// the first line of the block.
type block struct {
	lines []ir.Line
	anns  []ir.Annotation
}

func (b *block) append(o block) {
	shift := len(b.lines)
	b.lines = append(b.lines, o.lines...)
	for _, a := range o.anns {
		a.Range = a.Range.Shift(shift)
		b.anns = append(b.anns, a)
	}
}

func (d *decoder) block(nodes []*Node, path string) block {
	var b block
	var loose []*Node
	flush := func() {
		if len(loose) > 0 {
			b.append(block{lines: d.inline(loose, path)})
			loose = nil
		}
	}

	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch n.Type {
		case NodeText, NodeBreak:
			loose = append(loose, n)
		case NodeParagraph:
			flush()
			b.append(block{lines: d.inline(n.Children, p+".children")})
		case NodeWrapper, NodeClass:
			flush()
			inner := d.block(n.Children, p+".children")
			if def, ok := d.recognize(n, ir.ScopeLine, p); ok {
				if len(inner.lines) == 0 {
					d.empty(n, p)
				} else {
					ann := ir.Annotation{
						Name:       n.Name,
						Scope:      ir.ScopeLine,
						Range:      ir.Range{Start: 0, End: len(inner.lines)},
						Attributes: def.WithoutProps(n.Attributes),
					}
					inner.anns = append([]ir.Annotation{ann}, inner.anns...)
				}
			}
			b.append(inner)
		default:
			flush()
			d.reduce(n, p)
			b.append(d.block(n.Children, p+".children"))
		}
	}
	flush()
	return b
}

// inline decodes paragraph content into one or more lines with
// line-local annotation ranges.
func (d *decoder) inline(nodes []*Node, path string) []ir.Line {
	out := []ir.Line{{}}
	for i, n := range nodes {
		out = joinLines(out, d.inlineNode(n, fmt.Sprintf("%s[%d]", path, i)))
	}
	return out
}

func (d *decoder) inlineNode(n *Node, path string) []ir.Line {
	switch n.Type {
	case NodeText:
		parts := strings.Split(n.Text, "\n")
		lines := make([]ir.Line, len(parts))
		for i, part := range parts {
			lines[i].Value = part
		}
		return lines
	case NodeBreak:
		return []ir.Line{{}, {}}
	case NodeWrapper, NodeClass:
		lines := d.inline(n.Children, path+".children")
		scope := n.Scope
		if !scope.IsInline() {
			scope = ir.ScopeChar
		}
		def, ok := d.recognize(n, scope, path)
		if !ok {
			return lines
		}
		attached := false
		for li := range lines {
			length := ir.RuneLen(lines[li].Value)
			if length == 0 {
				continue
			}
			ann := ir.Annotation{
				Name:       n.Name,
				Scope:      scope,
				Range:      ir.Range{Start: 0, End: length},
				Attributes: def.WithoutProps(n.Attributes),
			}
			lines[li].Annotations = append([]ir.Annotation{ann}, lines[li].Annotations...)
			attached = true
		}
		if !attached {
			d.empty(n, path)
		}
		return lines
	default:
		d.reduce(n, path)
		return d.inline(n.Children, path+".children")
	}
}

// joinLines appends b to a, continuing the last line of a with the first
// line of b.
func joinLines(a, b []ir.Line) []ir.Line {
	last := &a[len(a)-1]
	shift := ir.RuneLen(last.Value)
	last.Value += b[0].Value
	for _, ann := range b[0].Annotations {
		ann.Range = ann.Range.Shift(shift)
		last.Annotations = append(last.Annotations, ann)
	}
	return append(a, b[1:]...)
}

func (d *decoder) recognize(n *Node, scope ir.Scope, path string) (registry.Item, bool) {
	if def, ok := d.reg.Resolve(n.Name, scope); ok {
		return def, true
	}
	d.report.Lose(ir.LossL2, ir.LostElement{
		Path:          path,
		ElementType:   "node",
		Reason:        fmt.Sprintf("%q is not registered for %s scope; kept its text", n.Name, scope),
		OriginalValue: n.Name,
	})
	return registry.Item{}, false
}

// empty reports a recognized annotation node that covers no text.
func (d *decoder) empty(n *Node, path string) {
	d.report.Lose(ir.LossL3, ir.LostElement{
		Path:          path,
		ElementType:   "annotation",
		Reason:        fmt.Sprintf("%q covers no text", n.Name),
		OriginalValue: n.Name,
	})
}

func (d *decoder) reduce(n *Node, path string) {
	d.report.Lose(ir.LossL2, ir.LostElement{
		Path:          path,
		ElementType:   "node",
		Reason:        fmt.Sprintf("%s node %q reduced to its text", n.Type, n.Name),
		OriginalValue: n.Name,
	})
}
