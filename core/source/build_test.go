package source

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/ir"
)

var equateEmpty = cmpopts.EquateEmpty()

func char(name string, start, end, order int) ir.Annotation {
	return ir.Annotation{Name: name, Scope: ir.ScopeChar, Range: ir.Range{Start: start, End: end}, Order: order}
}

func docAnn(name string, start, end, order int) ir.Annotation {
	return ir.Annotation{Name: name, Scope: ir.ScopeDocument, Range: ir.Range{Start: start, End: end}, Order: order}
}

func lineAnn(name string, start, end, order int) ir.Annotation {
	return ir.Annotation{Name: name, Scope: ir.ScopeLine, Range: ir.Range{Start: start, End: end}, Order: order}
}

func TestBuildScenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *ir.Document
	}{
		{
			name: "unknown directive passes through",
			text: "// @char Unknown {0-4}\nhello",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "// @char Unknown {0-4}"},
				{Value: "hello"},
			}},
		},
		{
			name: "explicit char range",
			text: "// @char Tooltip {1-4}\nabcdef",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "abcdef", Annotations: []ir.Annotation{char("Tooltip", 1, 5, 0)}},
			}},
		},
		{
			name: "line marker pair",
			text: "// @line Collapsible\na\nb\n// @line Collapsible end\nc",
			want: &ir.Document{
				Lines:       []ir.Line{{Value: "a"}, {Value: "b"}, {Value: "c"}},
				Annotations: []ir.Annotation{lineAnn("Collapsible", 0, 2, 0)},
			},
		},
		{
			name: "document regex crossing lines",
			text: "// @document fold {re:/o\\nw/g}\nhello\nworld",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "hello", Annotations: []ir.Annotation{docAnn("fold", 4, 5, 0)}},
				{Value: "world", Annotations: []ir.Annotation{docAnn("fold", 6, 7, 1)}},
			}},
		},
		{
			name: "unsupported scope passes through",
			text: "// @line Tooltip\nx",
			want: &ir.Document{Lines: []ir.Line{{Value: "// @line Tooltip"}, {Value: "x"}}},
		},
		{
			name: "unclosed class marker covers one line",
			text: "// @line Mark\na\nb",
			want: &ir.Document{
				Lines:       []ir.Line{{Value: "a"}, {Value: "b"}},
				Annotations: []ir.Annotation{lineAnn("Mark", 0, 1, 0)},
			},
		},
		{
			name: "unclosed render marker runs to the end",
			text: "x\n// @line Collapsible\na\nb",
			want: &ir.Document{
				Lines:       []ir.Line{{Value: "x"}, {Value: "a"}, {Value: "b"}},
				Annotations: []ir.Annotation{lineAnn("Collapsible", 1, 3, 0)},
			},
		},
		{
			name: "nested markers close most recent first",
			text: "// @line Collapsible\n// @line Collapsible\na\n// @line Collapsible end\nb\n// @line Collapsible end",
			want: &ir.Document{
				Lines: []ir.Line{{Value: "a"}, {Value: "b"}},
				Annotations: []ir.Annotation{
					lineAnn("Collapsible", 0, 2, 0),
					lineAnn("Collapsible", 0, 1, 1),
				},
			},
		},
		{
			name: "stray end passes through",
			text: "// @line Collapsible end\na",
			want: &ir.Document{Lines: []ir.Line{{Value: "// @line Collapsible end"}, {Value: "a"}}},
		},
		{
			name: "explicit line range",
			text: "// @line Highlight {1-2}\na\nb\nc",
			want: &ir.Document{
				Lines:       []ir.Line{{Value: "a"}, {Value: "b"}, {Value: "c"}},
				Annotations: []ir.Annotation{lineAnn("Highlight", 1, 3, 0)},
			},
		},
		{
			name: "line range clipped to the block",
			text: "// @line Highlight {1-8}\na\nb",
			want: &ir.Document{
				Lines:       []ir.Line{{Value: "a"}, {Value: "b"}},
				Annotations: []ir.Annotation{lineAnn("Highlight", 1, 2, 0)},
			},
		},
		{
			name: "line directive with regex passes through",
			text: "// @line Highlight {re:/a/}\na",
			want: &ir.Document{Lines: []ir.Line{{Value: "// @line Highlight {re:/a/}"}, {Value: "a"}}},
		},
		{
			name: "char directive without following line is kept",
			text: "a\n// @char Mark",
			want: &ir.Document{Lines: []ir.Line{{Value: "a"}, {Value: "// @char Mark"}}},
		},
		{
			name: "char regex applies every match",
			text: "// @char Mark {re:/l/g}\nhello",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "hello", Annotations: []ir.Annotation{char("Mark", 2, 3, 0), char("Mark", 3, 4, 1)}},
			}},
		},
		{
			name: "regex offsets count code points",
			text: "x\n// @char Mark {re:/é/}\nhé hé",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "x"},
				{Value: "hé hé", Annotations: []ir.Annotation{char("Mark", 3, 4, 0), char("Mark", 6, 7, 1)}},
			}},
		},
		{
			name: "char range clipped to the line",
			text: "// @char Mark {3-9}\nabcd",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "abcd", Annotations: []ir.Annotation{char("Mark", 3, 4, 0)}},
			}},
		},
		{
			name: "char range past the line selects nothing",
			text: "// @char Mark {7-9}\nabc",
			want: &ir.Document{Lines: []ir.Line{{Value: "abc"}}},
		},
		{
			name: "char without selector covers the line",
			text: "a\n// @char Highlight\nbcd",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "a"},
				{Value: "bcd", Annotations: []ir.Annotation{char("Highlight", 2, 5, 0)}},
			}},
		},
		{
			name: "char orders run across the block",
			text: "// @char Mark {0-0}\n// @char Highlight {1-1}\nab\n// @char Tooltip {0-1}\ncd",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "ab", Annotations: []ir.Annotation{char("Mark", 0, 1, 0), char("Highlight", 1, 2, 1)}},
				{Value: "cd", Annotations: []ir.Annotation{char("Tooltip", 3, 5, 2)}},
			}},
		},
		{
			name: "document pieces follow char annotations",
			text: "// @document Highlight {1-3}\n// @char Mark {0-0}\nab\ncd",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "ab", Annotations: []ir.Annotation{char("Mark", 0, 1, 0), docAnn("Highlight", 1, 2, 1)}},
				{Value: "cd", Annotations: []ir.Annotation{docAnn("Highlight", 3, 4, 2)}},
			}},
		},
		{
			name: "indented directive",
			text: "  // @char Mark {2-4}\n  foo()",
			want: &ir.Document{Lines: []ir.Line{
				{Value: "  foo()", Annotations: []ir.Annotation{char("Mark", 2, 5, 0)}},
			}},
		},
		{
			name: "empty text",
			text: "",
			want: &ir.Document{Lines: []ir.Line{{Value: ""}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.text, Options{})
			if diff := cmp.Diff(tt.want, got, equateEmpty); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
			if errs := ir.ValidateDocument(got); len(errs) > 0 {
				t.Errorf("Build() produced an invalid document: %v", errs)
			}
		})
	}
}

func TestBuildAttributes(t *testing.T) {
	doc := Build(`// @char Tooltip {0-2} content="a tip" open count=2`+"\nabc", Options{})
	want := ir.Attributes{{Key: "content", Value: "a tip"}, {Key: "open", Value: true}, {Key: "count", Value: float64(2)}}
	if diff := cmp.Diff(want, doc.Lines[0].Annotations[0].Attributes); diff != "" {
		t.Errorf("Attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOptions(t *testing.T) {
	meta := ir.Meta{{Key: "title", Value: "demo.py"}}
	doc := Build("# @char Mark {0-0}\nx = 1", Options{Lang: "py", Meta: meta})
	if doc.Lang != "py" {
		t.Errorf("Lang = %q, want py", doc.Lang)
	}
	if diff := cmp.Diff(meta, doc.Meta); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
	if n := doc.InlineCount(); n != 1 {
		t.Errorf("InlineCount() = %d, want 1", n)
	}

	meta[0].Value = "changed"
	if doc.Meta[0].Value != "demo.py" {
		t.Error("Build shares meta with its options")
	}

	custom := Build("REM @char Mark\nx", Options{Comment: directive.CommentStyle{Open: "REM"}})
	if n := custom.InlineCount(); n != 1 {
		t.Errorf("custom style InlineCount() = %d, want 1", n)
	}
}

func TestBuildReportsPassThrough(t *testing.T) {
	text := strings.Join([]string{
		"// @char Unknown",
		"// @char Tooltip {4-1}",
		"// @line Collapsible end",
		"// regular comment",
		"code",
	}, "\n")

	_, report := BuildWithReport(text, Options{})
	if len(report.Warnings) != 3 {
		t.Fatalf("Warnings = %v, want 3 entries", report.Warnings)
	}
	if !strings.HasPrefix(report.Warnings[0], "line 1:") {
		t.Errorf("Warnings[0] = %q, want a line 1 warning", report.Warnings[0])
	}
	if report.LossClass != ir.LossL0 {
		t.Errorf("LossClass = %q, want L0", report.LossClass)
	}
}
