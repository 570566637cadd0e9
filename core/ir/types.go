package ir

import (
	"strings"
	"unicode/utf8"
)

// types.go - Document model shared by every codec.

// Scope is the unit an annotation attaches to.
type Scope string

// Scope constants.
const (
	// ScopeChar marks a character range on one line.
	ScopeChar Scope = "char"

	// ScopeLine marks a contiguous run of whole lines.
	ScopeLine Scope = "line"

	// ScopeDocument marks a character range resolved against the whole block.
	ScopeDocument Scope = "document"
)

// validScopes is the set of valid scopes.
var validScopes = map[Scope]bool{
	ScopeChar:     true,
	ScopeLine:     true,
	ScopeDocument: true,
}

// IsValid returns true if the scope is valid.
func (s Scope) IsValid() bool {
	return validScopes[s]
}

// IsInline returns true for scopes whose annotations live on a Line.
func (s Scope) IsInline() bool {
	return s == ScopeChar || s == ScopeDocument
}

// Kind is how an annotation is presented.
type Kind string

// Kind constants.
const (
	// KindClass carries a static style token.
	KindClass Kind = "class"

	// KindRender carries a target wrapper component plus attributes.
	KindRender Kind = "render"
)

// IsValid returns true if the kind is valid.
func (k Kind) IsValid() bool {
	return k == KindClass || k == KindRender
}

// Source tells whether an annotation definition ships with the engine or
// comes from the host application.
type Source string

// Source constants.
const (
	SourceNative Source = "native"
	SourceCustom Source = "custom"
)

// IsValid returns true if the source is valid.
func (s Source) IsValid() bool {
	return s == SourceNative || s == SourceCustom
}

// Range is a half-open [Start, End) interval.
type Range struct {
	// Start is the first covered position.
	Start int `json:"start"`

	// End is one past the last covered position.
	End int `json:"end"`
}

// Valid returns true if the range covers at least one position.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.Start < r.End
}

// Len returns the number of covered positions.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains returns true if other lies entirely inside r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Overlaps returns true if the two ranges share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Intersect returns the overlap of two ranges. The result is invalid when
// they do not overlap.
func (r Range) Intersect(other Range) Range {
	return Range{Start: max(r.Start, other.Start), End: min(r.End, other.End)}
}

// Shift returns the range moved by delta positions.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Annotation is a named, ranged mark on a code sample.
type Annotation struct {
	// Name is the registry name (e.g., "Tooltip", "Collapsible").
	Name string `json:"name"`

	// Scope is the unit the annotation attaches to.
	Scope Scope `json:"scope"`

	// Range is in line units for line scope and absolute block offsets otherwise.
	Range Range `json:"range"`

	// Attributes carries the directive attributes.
	Attributes Attributes `json:"attributes,omitempty"`

	// Order is the authoring sequence; lower orders wrap outermost.
	Order int `json:"order"`
}

// Clone returns a copy of the annotation with its own attribute map.
func (a Annotation) Clone() Annotation {
	a.Attributes = a.Attributes.Clone()
	return a
}

// Line is one line of plain code text.
type Line struct {
	// Value is the code text without any directive markup.
	Value string `json:"value"`

	// Annotations are the char- and document-scope annotations on this line.
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Document is a code block in structured form.
type Document struct {
	// Lang is the fenced block language (e.g., "ts", "go").
	Lang string `json:"lang"`

	// Meta is the block meta line as ordered key/value pairs.
	Meta Meta `json:"meta"`

	// Lines holds the code lines.
	Lines []Line `json:"lines"`

	// Annotations holds the line-scope annotations.
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Text returns all line values joined by "\n".
func (d *Document) Text() string {
	values := make([]string, len(d.Lines))
	for i, line := range d.Lines {
		values[i] = line.Value
	}
	return strings.Join(values, "\n")
}

// LineOffsets returns the absolute offset at which each line starts.
func (d *Document) LineOffsets() []int {
	offsets := make([]int, len(d.Lines))
	pos := 0
	for i, line := range d.Lines {
		offsets[i] = pos
		pos += RuneLen(line.Value) + 1
	}
	return offsets
}

// InlineCount returns the number of char- and document-scope annotations.
func (d *Document) InlineCount() int {
	n := 0
	for _, line := range d.Lines {
		n += len(line.Annotations)
	}
	return n
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Lang: d.Lang,
		Meta: d.Meta.Clone(),
	}
	if d.Lines != nil {
		out.Lines = make([]Line, len(d.Lines))
		for i, line := range d.Lines {
			out.Lines[i] = Line{Value: line.Value, Annotations: cloneAnnotations(line.Annotations)}
		}
	}
	out.Annotations = cloneAnnotations(d.Annotations)
	return out
}

func cloneAnnotations(in []Annotation) []Annotation {
	if in == nil {
		return nil
	}
	out := make([]Annotation, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// RuneLen returns the length of s in code points.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Slice returns the code points [start, end) of s, clamped to its length.
func Slice(s string, start, end int) string {
	runes := []rune(s)
	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))
	return string(runes[start:end])
}
