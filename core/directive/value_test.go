package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/codemark/core/ir"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		token string
		want  any
	}{
		{`"tip"`, "tip"},
		{`'tip'`, "tip"},
		{`42`, float64(42)},
		{`-0.5`, -0.5},
		{`true`, true},
		{`false`, false},
		{`null`, nil},
		{`[1,"a"]`, []any{float64(1), "a"}},
		{`{"a":{"b":[]}}`, map[string]any{"a": map[string]any{"b": []any{}}}},
		{`plain`, "plain"},
		{`12px`, "12px"},
		{`"5"`, "5"},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseValue(tt.token)); diff != "" {
			t.Errorf("ParseValue(%s) mismatch (-want +got):\n%s", tt.token, diff)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{"tip", `"tip"`},
		{"<a>&", `"<a>&"`},
		{"line\nbreak", `"line\nbreak"`},
		{float64(3), `3`},
		{1.5, `1.5`},
		{nil, `null`},
		{[]any{"a", true}, `["a",true]`},
		{map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
	}

	for _, tt := range tests {
		got, err := FormatValue(tt.v)
		if err != nil {
			t.Errorf("FormatValue(%v) error: %v", tt.v, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatValue(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}

	if _, err := FormatValue(func() {}); err == nil {
		t.Error("FormatValue(func) should fail")
	}
}

func TestValidKey(t *testing.T) {
	for _, k := range []string{"a", "data-x", "_x1"} {
		if !ValidKey(k) {
			t.Errorf("ValidKey(%q) = false", k)
		}
	}
	for _, k := range []string{"", "1a", "a b", "a=b"} {
		if ValidKey(k) {
			t.Errorf("ValidKey(%q) = true", k)
		}
	}
}

func TestParseMeta(t *testing.T) {
	tests := []struct {
		line string
		want ir.Meta
	}{
		{"", nil},
		{`title="demo.ts" showLineNumbers`, ir.Meta{{Key: "title", Value: "demo.ts"}, {Key: "showLineNumbers", Value: true}}},
		{`a='x y' b=plain`, ir.Meta{{Key: "a", Value: "x y"}, {Key: "b", Value: "plain"}}},
		{`a=1 a=2`, ir.Meta{{Key: "a", Value: "2"}}},
		{`title=`, nil},
		{`title=demo.ts n=42 ab=ab`, ir.Meta{{Key: "title", Value: "demo.ts"}, {Key: "n", Value: "42"}, {Key: "ab", Value: "ab"}}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseMeta(tt.line)); diff != "" {
			t.Errorf("ParseMeta(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestFormatMeta(t *testing.T) {
	m := ir.Meta{
		{Key: "title", Value: `my "demo".ts`},
		{Key: "showLineNumbers", Value: true},
		{Key: "wrap", Value: false},
	}
	got := FormatMeta(m)
	if want := `title="my \"demo\".ts" showLineNumbers`; got != want {
		t.Errorf("FormatMeta() = %s, want %s", got, want)
	}

	back := ParseMeta(got)
	if diff := cmp.Diff(m[:2], back); diff != "" {
		t.Errorf("ParseMeta(FormatMeta()) mismatch (-want +got):\n%s", diff)
	}
}
