package markup

import (
	"fmt"
	"sort"

	"github.com/FocuswithJustin/codemark/core/events"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Encode converts doc into a markup tree.
//
// Line annotations wrap paragraphs and inline annotations wrap text inside
// their paragraph. An enclosing range always wraps the ranges it contains;
// between identical ranges the lower order wraps outermost. Annotations the
// registry does not define for their scope, or whose range misses their
// line or the block, are dropped and reported as L3.
//
// Render props of the registry are added after the annotation attributes
// unless an attribute of the same key is present. An attribute equal to its
// prop is reported as L1 since Decode drops it again.
func Encode(doc *ir.Document, reg *registry.Registry) (*Node, *ir.LossReport) {
	if reg == nil {
		reg = registry.Default()
	}
	report := ir.NewLossReport("document", "markup")
	root := &Node{Type: NodeRoot, Lang: doc.Lang, Meta: doc.Meta.Clone()}

	lineCount := len(doc.Lines)
	var anns []ir.Annotation
	var defs []registry.Item
	for i, a := range doc.Annotations {
		path := fmt.Sprintf("annotations[%d]", i)
		def, ok := reg.Resolve(a.Name, ir.ScopeLine)
		if !ok || a.Scope != ir.ScopeLine {
			dropAnnotation(report, path, a, "not registered for line scope")
			continue
		}
		a.Range = a.Range.Intersect(ir.Range{Start: 0, End: lineCount})
		if !a.Range.Valid() {
			dropAnnotation(report, path, a, "range is outside the block")
			continue
		}
		checkDefaults(report, path, a, def)
		anns = append(anns, a)
		defs = append(defs, def)
	}

	offsets := doc.LineOffsets()
	paragraphs := make([]*Node, lineCount)
	for li, line := range doc.Lines {
		paragraphs[li] = encodeLine(li, line, offsets[li], reg, report)
	}

	tree := events.Nest(nestingItems(anns, defs), lineCount)
	root.Children = convert(tree,
		func(gap *events.Node) []*Node {
			return paragraphs[gap.Start:gap.End]
		},
		func(i int) *Node {
			return annotationNode(defs[i], anns[i].Name, ir.ScopeLine, anns[i].Attributes)
		})
	return root, report
}

func encodeLine(li int, line ir.Line, offset int, reg *registry.Registry, report *ir.LossReport) *Node {
	p := &Node{Type: NodeParagraph}
	runes := []rune(line.Value)
	bounds := ir.Range{Start: 0, End: len(runes)}

	var anns []ir.Annotation
	var defs []registry.Item
	for i, a := range line.Annotations {
		path := fmt.Sprintf("lines[%d].annotations[%d]", li, i)
		def, ok := reg.Resolve(a.Name, a.Scope)
		if !ok || !a.Scope.IsInline() {
			dropAnnotation(report, path, a, fmt.Sprintf("not registered for %s scope", a.Scope))
			continue
		}
		a.Range = a.Range.Shift(-offset).Intersect(bounds)
		if !a.Range.Valid() {
			dropAnnotation(report, path, a, "range is outside its line")
			continue
		}
		checkDefaults(report, path, a, def)
		anns = append(anns, a)
		defs = append(defs, def)
	}

	tree := events.Nest(nestingItems(anns, defs), len(runes))
	p.Children = convert(tree,
		func(gap *events.Node) []*Node {
			return []*Node{{Type: NodeText, Text: string(runes[gap.Start:gap.End])}}
		},
		func(i int) *Node {
			return annotationNode(defs[i], anns[i].Name, anns[i].Scope, anns[i].Attributes)
		})
	return p
}

// nestingItems ranks annotations in visit order so containment decides
// nesting and order only decides between identical ranges.
func nestingItems(anns []ir.Annotation, defs []registry.Item) []events.Item {
	idx := make([]int, len(anns))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return ir.VisitLess(anns[idx[i]], anns[idx[j]])
	})

	items := make([]events.Item, len(anns))
	for rank, i := range idx {
		items[i] = events.Item{
			Start:    anns[i].Range.Start,
			End:      anns[i].Range.End,
			Order:    rank,
			Priority: defs[i].Priority,
		}
	}
	return items
}

// convert maps a nesting tree to markup nodes. leaf renders gaps and wrap
// creates the node for an item.
func convert(n *events.Node, leaf func(*events.Node) []*Node, wrap func(int) *Node) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsGap() {
			out = append(out, leaf(c)...)
			continue
		}
		w := wrap(c.Item)
		w.Children = convert(c, leaf, wrap)
		out = append(out, w)
	}
	return out
}

func dropAnnotation(report *ir.LossReport, path string, a ir.Annotation, reason string) {
	report.Lose(ir.LossL3, ir.LostElement{
		Path:          path,
		ElementType:   "annotation",
		Reason:        reason,
		OriginalValue: a.Name,
	})
}

func checkDefaults(report *ir.LossReport, path string, a ir.Annotation, def registry.Item) {
	for _, attr := range a.Attributes {
		if def.IsDefault(attr.Key, attr.Value) {
			report.Lose(ir.LossL1, ir.LostElement{
				Path:          path + ".attributes." + attr.Key,
				ElementType:   "attribute",
				Reason:        "equals the registered prop and is not kept by decoding",
				OriginalValue: attr.Value,
			})
		}
	}
}
