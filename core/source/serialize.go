package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Serialize writes a document as commented text.
func Serialize(doc *ir.Document, opts Options) string {
	text, _ := SerializeWithReport(doc, opts)
	return text
}

// SerializeWithReport is Serialize plus a report of what the text cannot
// carry: false boolean attributes are omitted (L1), keys and values that
// have no directive form are dropped (L2), and annotations the registry
// would not read back are lost (L3).
func SerializeWithReport(doc *ir.Document, opts Options) (string, *ir.LossReport) {
	lang := opts.Lang
	if lang == "" {
		lang = doc.Lang
	}
	s := &serializer{
		reg:    opts.registry(),
		style:  opts.style(lang),
		report: ir.NewLossReport("document", "text"),
	}
	return s.run(doc), s.report
}

type serializer struct {
	reg    *registry.Registry
	style  directive.CommentStyle
	report *ir.LossReport
	out    []string
}

func (s *serializer) run(doc *ir.Document) string {
	starts := make(map[int][]int)
	for i, a := range doc.Annotations {
		path := fmt.Sprintf("annotations[%d]", i)
		if !a.Range.Valid() || a.Range.End > len(doc.Lines) {
			s.lose(ir.LossL3, path, "annotation", "range is outside the block", a.Name)
			continue
		}
		if !s.readable(a, path) {
			continue
		}
		starts[a.Range.Start] = append(starts[a.Range.Start], i)
	}

	offsets := doc.LineOffsets()
	for li, line := range doc.Lines {
		indent := directive.Indent(line.Value)

		lineAnns := starts[li]
		sort.SliceStable(lineAnns, func(i, j int) bool {
			return doc.Annotations[lineAnns[i]].Order < doc.Annotations[lineAnns[j]].Order
		})
		for _, i := range lineAnns {
			a := doc.Annotations[i]
			s.emit(a, a.Range, fmt.Sprintf("annotations[%d]", i), indent)
		}

		inline := make([]int, 0, len(line.Annotations))
		for i, a := range line.Annotations {
			path := fmt.Sprintf("lines[%d].annotations[%d]", li, i)
			if !a.Range.Valid() {
				s.lose(ir.LossL3, path, "annotation", "empty range", a.Name)
				continue
			}
			if !s.readable(a, path) {
				continue
			}
			inline = append(inline, i)
		}
		sort.SliceStable(inline, func(i, j int) bool {
			return line.Annotations[inline[i]].Order < line.Annotations[inline[j]].Order
		})
		for _, i := range inline {
			a := line.Annotations[i]
			r := a.Range
			if a.Scope == ir.ScopeChar {
				r = r.Shift(-offsets[li])
			}
			s.emit(a, r, fmt.Sprintf("lines[%d].annotations[%d]", li, i), indent)
		}

		if d, ok := directive.Parse(line.Value, s.style); ok {
			if _, known := s.reg.Resolve(d.Name, d.Scope); known {
				s.report.AddWarning(fmt.Sprintf("line %d reads as a directive and will be consumed when rebuilt", li))
				s.report.Escalate(ir.LossL2)
			}
		}
		s.out = append(s.out, line.Value)
	}
	return strings.Join(s.out, "\n")
}

// readable reports whether a rebuild with the same registry would read the
// annotation back, recording the loss when it would not.
func (s *serializer) readable(a ir.Annotation, path string) bool {
	if _, ok := s.reg.Resolve(a.Name, a.Scope); !ok {
		s.lose(ir.LossL3, path, "annotation",
			fmt.Sprintf("%s is not registered for %s scope", a.Name, a.Scope), a.Name)
		return false
	}
	return true
}

func (s *serializer) emit(a ir.Annotation, r ir.Range, path, indent string) {
	d := &directive.Directive{
		Scope:      a.Scope,
		Name:       a.Name,
		Selector:   &directive.Selector{Range: &r},
		Attributes: a.Attributes,
	}

	for _, attr := range a.Attributes {
		k, v := attr.Key, attr.Value
		attrPath := path + ".attributes." + k
		switch {
		case !directive.ValidKey(k):
			s.lose(ir.LossL2, attrPath, "attribute", "key cannot be written in a directive", v)
		case v == false:
			s.lose(ir.LossL1, attrPath, "attribute", "false boolean attributes are omitted", v)
		default:
			if _, isBool := v.(bool); isBool {
				continue
			}
			if _, err := directive.FormatValue(v); err != nil {
				s.lose(ir.LossL2, attrPath, "attribute", err.Error(), nil)
			}
		}
	}

	s.out = append(s.out, directive.Format(d, s.style, indent))
}

func (s *serializer) lose(class ir.LossClass, path, kind, reason string, value any) {
	s.report.Lose(class, ir.LostElement{
		Path:          path,
		ElementType:   kind,
		Reason:        reason,
		OriginalValue: value,
	})
}
