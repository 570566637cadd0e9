package source

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Build parses commented text into a document.
func Build(text string, opts Options) *ir.Document {
	doc, _ := BuildWithReport(text, opts)
	return doc
}

// BuildWithReport is Build plus a report listing every directive-like line
// that was kept as code.
func BuildWithReport(text string, opts Options) (*ir.Document, *ir.LossReport) {
	b := &builder{
		reg:    opts.registry(),
		style:  opts.style(opts.Lang),
		report: ir.NewLossReport("text", "document"),
		doc: &ir.Document{
			Lang:  opts.Lang,
			Meta:  opts.Meta.Clone(),
			Lines: []ir.Line{},
		},
	}
	for i, raw := range strings.Split(text, "\n") {
		b.line(i+1, raw)
	}
	b.finish()
	return b.doc, b.report
}

// stagedChar is a char directive waiting for the next code line.
type stagedChar struct {
	d   *directive.Directive
	raw string
	at  int
}

// stagedDoc is a document directive resolved after the last line.
type stagedDoc struct {
	d   *directive.Directive
	seq int
}

// marker is an open line marker.
type marker struct {
	name  string
	kind  ir.Kind
	start int
	seq   int
	attrs ir.Attributes
}

// stagedLine is a finished line annotation before numbering.
type stagedLine struct {
	ann ir.Annotation
	seq int
}

type builder struct {
	reg    *registry.Registry
	style  directive.CommentStyle
	report *ir.LossReport
	doc    *ir.Document

	offset    int
	charOrder int
	lineSeq   int

	staged  []stagedChar
	docs    []stagedDoc
	markers []marker
	lines   []stagedLine
}

func (b *builder) line(num int, raw string) {
	d, ok := directive.Parse(raw, b.style)
	if !ok {
		if _, body, isComment := b.style.Strip(raw); isComment && strings.HasPrefix(body, "@") {
			b.passThrough(num, "malformed directive")
		}
		b.commit(raw)
		return
	}

	item, ok := b.reg.Resolve(d.Name, d.Scope)
	if !ok {
		b.passThrough(num, fmt.Sprintf("%s is not registered for %s scope", d.Name, d.Scope))
		b.commit(raw)
		return
	}

	if !b.consume(d, item, raw, num) {
		b.commit(raw)
	}
}

func (b *builder) passThrough(num int, reason string) {
	b.report.AddWarning(fmt.Sprintf("line %d: %s; kept as code", num, reason))
}

// consume applies a resolved directive. It reports false when the line
// must be kept as code.
func (b *builder) consume(d *directive.Directive, item registry.Item, raw string, num int) bool {
	switch d.Scope {
	case ir.ScopeChar:
		if d.End {
			b.passThrough(num, "end is only valid for line markers")
			return false
		}
		b.staged = append(b.staged, stagedChar{d: d, raw: raw, at: num})
		return true

	case ir.ScopeDocument:
		if d.End {
			b.passThrough(num, "end is only valid for line markers")
			return false
		}
		b.docs = append(b.docs, stagedDoc{d: d, seq: len(b.docs)})
		return true
	}

	sel := d.Selector
	switch {
	case sel != nil && sel.Regex != nil:
		b.passThrough(num, "line directives take a range, not a regex")
		return false

	case sel != nil && d.End:
		b.passThrough(num, "end cannot follow an explicit range")
		return false

	case sel != nil:
		b.addLine(d.Name, *sel.Range, d.Attributes)
		return true

	case d.End:
		for i := len(b.markers) - 1; i >= 0; i-- {
			m := b.markers[i]
			if m.name != d.Name || m.kind != item.Kind {
				continue
			}
			b.markers = append(b.markers[:i], b.markers[i+1:]...)
			b.closeMarker(m, len(b.doc.Lines))
			return true
		}
		b.passThrough(num, fmt.Sprintf("no open %s marker to end", d.Name))
		return false

	default:
		b.markers = append(b.markers, marker{
			name:  d.Name,
			kind:  item.Kind,
			start: len(b.doc.Lines),
			seq:   b.nextLineSeq(),
			attrs: d.Attributes,
		})
		return true
	}
}

func (b *builder) nextLineSeq() int {
	s := b.lineSeq
	b.lineSeq++
	return s
}

func (b *builder) addLine(name string, r ir.Range, attrs ir.Attributes) {
	b.lines = append(b.lines, stagedLine{
		ann: ir.Annotation{Name: name, Scope: ir.ScopeLine, Range: r, Attributes: attrs.Clone()},
		seq: b.nextLineSeq(),
	})
}

func (b *builder) closeMarker(m marker, end int) {
	b.lines = append(b.lines, stagedLine{
		ann: ir.Annotation{
			Name:       m.name,
			Scope:      ir.ScopeLine,
			Range:      ir.Range{Start: m.start, End: end},
			Attributes: m.attrs.Clone(),
		},
		seq: m.seq,
	})
}

// commit appends a code line and applies the staged char directives to it.
func (b *builder) commit(value string) {
	line := ir.Line{Value: value}
	length := ir.RuneLen(value)

	for _, s := range b.staged {
		for _, r := range selectSpans(s.d.Selector, value, length) {
			line.Annotations = append(line.Annotations, ir.Annotation{
				Name:       s.d.Name,
				Scope:      ir.ScopeChar,
				Range:      r.Shift(b.offset),
				Attributes: s.d.Attributes.Clone(),
				Order:      b.charOrder,
			})
			b.charOrder++
		}
	}
	b.staged = nil

	b.doc.Lines = append(b.doc.Lines, line)
	b.offset += length + 1
}

// selectSpans returns the spans a selector picks in text of the given
// code point length. No selector picks the whole text.
func selectSpans(sel *directive.Selector, text string, length int) []ir.Range {
	var spans []ir.Range
	switch {
	case sel == nil:
		spans = append(spans, ir.Range{Start: 0, End: length})
	case sel.Range != nil:
		spans = append(spans, sel.Range.Intersect(ir.Range{Start: 0, End: length}))
	default:
		spans = regexSpans(sel.Regex, text)
	}

	out := spans[:0]
	for _, r := range spans {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// regexSpans returns every non-empty match of re as code point ranges.
func regexSpans(re *regexp.Regexp, text string) []ir.Range {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	spans := make([]ir.Range, 0, len(matches))
	prevByte, prevRune := 0, 0
	toRune := func(byteOff int) int {
		prevRune += utf8.RuneCountInString(text[prevByte:byteOff])
		prevByte = byteOff
		return prevRune
	}
	for _, m := range matches {
		if m[0] == m[1] {
			continue
		}
		start := toRune(m[0])
		end := toRune(m[1])
		spans = append(spans, ir.Range{Start: start, End: end})
	}
	return spans
}

func (b *builder) finish() {
	if len(b.staged) > 0 {
		rest := b.staged
		b.staged = nil
		for _, s := range rest {
			b.passThrough(s.at, "char directive has no following code line")
			b.commit(s.raw)
		}
	}

	b.resolveDocuments()

	count := len(b.doc.Lines)
	for _, m := range b.markers {
		end := count
		if m.kind == ir.KindClass {
			end = m.start + 1
		}
		b.closeMarker(m, end)
	}
	b.markers = nil

	sort.SliceStable(b.lines, func(i, j int) bool {
		a, c := b.lines[i], b.lines[j]
		if a.ann.Range.Start != c.ann.Range.Start {
			return a.ann.Range.Start < c.ann.Range.Start
		}
		return a.seq < c.seq
	})
	bounds := ir.Range{Start: 0, End: count}
	for _, l := range b.lines {
		l.ann.Range = l.ann.Range.Intersect(bounds)
		if !l.ann.Range.Valid() {
			continue
		}
		l.ann.Order = len(b.doc.Annotations)
		b.doc.Annotations = append(b.doc.Annotations, l.ann)
	}
}

// piece is one line's share of a resolved document directive.
type piece struct {
	ir.Piece
	dir   int
	match int
}

// resolveDocuments resolves document directives against the joined text
// and numbers the pieces line by line after every char annotation.
func (b *builder) resolveDocuments() {
	if len(b.docs) == 0 {
		return
	}
	text := b.doc.Text()
	length := ir.RuneLen(text)
	offsets := b.doc.LineOffsets()
	lengths := b.doc.LineLengths()

	var pieces []piece
	for _, sd := range b.docs {
		for mi, span := range selectSpans(sd.d.Selector, text, length) {
			for _, p := range ir.Project(span, offsets, lengths) {
				pieces = append(pieces, piece{Piece: p, dir: sd.seq, match: mi})
			}
		}
	}

	sort.SliceStable(pieces, func(i, j int) bool {
		a, c := pieces[i], pieces[j]
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		if a.dir != c.dir {
			return a.dir < c.dir
		}
		return a.match < c.match
	})

	for _, p := range pieces {
		sd := b.docs[p.dir]
		line := &b.doc.Lines[p.Line]
		line.Annotations = append(line.Annotations, ir.Annotation{
			Name:       sd.d.Name,
			Scope:      ir.ScopeDocument,
			Range:      p.Range,
			Attributes: sd.d.Attributes.Clone(),
			Order:      b.charOrder,
		})
		b.charOrder++
	}
}
