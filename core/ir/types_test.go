package ir

import (
	"testing"
)

func TestScopeValidation(t *testing.T) {
	tests := []struct {
		scope  Scope
		valid  bool
		inline bool
	}{
		{ScopeChar, true, true},
		{ScopeLine, true, false},
		{ScopeDocument, true, true},
		{Scope("block"), false, false},
		{Scope(""), false, false},
	}

	for _, tt := range tests {
		if got := tt.scope.IsValid(); got != tt.valid {
			t.Errorf("Scope(%q).IsValid() = %v, want %v", tt.scope, got, tt.valid)
		}
		if got := tt.scope.IsInline(); got != tt.inline {
			t.Errorf("Scope(%q).IsInline() = %v, want %v", tt.scope, got, tt.inline)
		}
	}
}

func TestKindAndSourceValidation(t *testing.T) {
	if !KindClass.IsValid() || !KindRender.IsValid() {
		t.Error("class and render kinds should be valid")
	}
	if Kind("style").IsValid() {
		t.Error(`Kind("style") should be invalid`)
	}
	if !SourceNative.IsValid() || !SourceCustom.IsValid() {
		t.Error("native and custom sources should be valid")
	}
	if Source("").IsValid() {
		t.Error("empty source should be invalid")
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name  string
		r     Range
		valid bool
		len   int
	}{
		{"normal", Range{Start: 1, End: 5}, true, 4},
		{"single", Range{Start: 0, End: 1}, true, 1},
		{"empty", Range{Start: 3, End: 3}, false, 0},
		{"inverted", Range{Start: 5, End: 2}, false, 0},
		{"negative", Range{Start: -1, End: 2}, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.r.Len(); got != tt.len {
				t.Errorf("Len() = %d, want %d", got, tt.len)
			}
		})
	}

	outer := Range{Start: 0, End: 10}
	inner := Range{Start: 2, End: 4}
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}
	if !outer.Overlaps(inner) {
		t.Error("outer should overlap inner")
	}
	if (Range{Start: 0, End: 2}).Overlaps(Range{Start: 2, End: 4}) {
		t.Error("adjacent ranges should not overlap")
	}
	if got, want := (Range{Start: 0, End: 5}).Intersect(Range{Start: 3, End: 9}), (Range{Start: 3, End: 5}); got != want {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
	if got, want := inner.Shift(6), (Range{Start: 8, End: 10}); got != want {
		t.Errorf("Shift() = %v, want %v", got, want)
	}
}

func TestDocumentTextAndOffsets(t *testing.T) {
	doc := &Document{
		Lines: []Line{
			{Value: "hello"},
			{Value: ""},
			{Value: "wörld"},
		},
	}

	if got, want := doc.Text(), "hello\n\nwörld"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	offsets := doc.LineOffsets()
	want := []int{0, 6, 7}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("LineOffsets()[%d] = %d, want %d", i, offsets[i], want[i])
		}
	}

	lengths := doc.LineLengths()
	if lengths[2] != 5 {
		t.Errorf("LineLengths()[2] = %d, want 5 (code points, not bytes)", lengths[2])
	}
}

func TestDocumentClone(t *testing.T) {
	doc := &Document{
		Lang: "ts",
		Meta: Meta{{Key: "title", Value: "demo.ts"}},
		Lines: []Line{{
			Value: "abc",
			Annotations: []Annotation{{
				Name:       "Tooltip",
				Scope:      ScopeChar,
				Range:      Range{Start: 0, End: 1},
				Attributes: Attributes{{Key: "content", Value: "tip"}},
			}},
		}},
		Annotations: []Annotation{{Name: "Collapsible", Scope: ScopeLine, Range: Range{Start: 0, End: 1}}},
	}

	clone := doc.Clone()
	clone.Lines[0].Annotations[0].Attributes.Set("content", "changed")
	clone.Meta[0].Value = "other.ts"
	clone.Annotations[0].Order = 9

	if v, _ := doc.Lines[0].Annotations[0].Attributes.Get("content"); v != "tip" {
		t.Error("Clone shares attribute maps with the original")
	}
	if doc.Meta[0].Value != "demo.ts" {
		t.Error("Clone shares meta with the original")
	}
	if doc.Annotations[0].Order != 0 {
		t.Error("Clone shares line annotations with the original")
	}
	if doc.InlineCount() != 1 {
		t.Errorf("InlineCount() = %d, want 1", doc.InlineCount())
	}
}

func TestSlice(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       string
	}{
		{"abcdef", 1, 5, "bcde"},
		{"héllo", 1, 3, "él"},
		{"abc", 2, 10, "c"},
		{"abc", 5, 9, ""},
		{"abc", -2, 1, "a"},
	}

	for _, tt := range tests {
		if got := Slice(tt.s, tt.start, tt.end); got != tt.want {
			t.Errorf("Slice(%q, %d, %d) = %q, want %q", tt.s, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestProject(t *testing.T) {
	doc := &Document{Lines: []Line{{Value: "hello"}, {Value: "world"}}}
	offsets, lengths := doc.LineOffsets(), doc.LineLengths()

	tests := []struct {
		name string
		span Range
		want []Piece
	}{
		{
			name: "inside one line",
			span: Range{Start: 1, End: 3},
			want: []Piece{{Line: 0, Range: Range{Start: 1, End: 3}}},
		},
		{
			name: "crossing the newline",
			span: Range{Start: 4, End: 7},
			want: []Piece{
				{Line: 0, Range: Range{Start: 4, End: 5}},
				{Line: 1, Range: Range{Start: 6, End: 7}},
			},
		},
		{
			name: "only the newline",
			span: Range{Start: 5, End: 6},
			want: nil,
		},
		{
			name: "empty span",
			span: Range{Start: 2, End: 2},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.span, offsets, lengths)
			if len(got) != len(tt.want) {
				t.Fatalf("Project() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Project()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
