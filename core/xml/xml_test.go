package xml

import (
	"strings"
	"testing"
)

func TestParseValidXML(t *testing.T) {
	doc, err := Parse([]byte(`<?xml version="1.0"?><codeblock lang="ts"><p>a</p></codeblock>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if root == nil || root.Name() != "codeblock" {
		t.Fatalf("Root() = %v, want codeblock", root)
	}
	if v, ok := root.Attr("lang"); !ok || v != "ts" {
		t.Errorf("Attr(lang) = %q, %v; want ts, true", v, ok)
	}
	if _, ok := root.Attr("meta"); ok {
		t.Error("Attr(meta) should be missing")
	}
}

func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
		{"invalid chars", "<root>\x00</root>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.xml)); err == nil {
				t.Error("Parse should fail for invalid XML")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		valid bool
	}{
		{"well formed", `<codeblock><p/></codeblock>`, true},
		{"declaration", `<?xml version="1.0"?><codeblock/>`, true},
		{"malformed", `<codeblock><p></codeblock>`, false},
		{"two roots", `<a/><b/>`, false},
		{"no root", ``, false},
		{"entity", `<!DOCTYPE x [<!ENTITY e "boom">]><x>&e;</x>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate([]byte(tt.xml))
			if result.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (errors: %v)", result.Valid, tt.valid, result.Errors)
			}
			if !tt.valid && len(result.Errors) == 0 {
				t.Error("invalid result should carry an error")
			}
		})
	}
}

func TestValidationErrorPosition(t *testing.T) {
	result := Validate([]byte("<a>\n<b>\n</a>"))
	if result.Valid {
		t.Fatal("Validate should fail")
	}
	if result.Errors[0].Line != 3 {
		t.Errorf("Line = %d, want 3", result.Errors[0].Line)
	}
	if !strings.HasPrefix(result.Errors[0].Error(), "3:") {
		t.Errorf("Error() = %q, want a 3: prefix", result.Errors[0].Error())
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(`<codeblock><p><Tooltip data-kind="render">a</Tooltip>b</p><p>c</p></codeblock>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	paragraphs, err := doc.XPath("//p")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(paragraphs) != 2 {
		t.Errorf("len(//p) = %d, want 2", len(paragraphs))
	}

	tips, err := doc.XPath(`//*[@data-kind="render"]`)
	if err != nil || len(tips) != 1 {
		t.Fatalf("XPath(render) = %v, %v", tips, err)
	}
	if tips[0].Name() != "Tooltip" || tips[0].Text() != "a" {
		t.Errorf("node = %s %q, want Tooltip %q", tips[0].Name(), tips[0].Text(), "a")
	}

	missing, err := doc.XPath("//br")
	if err != nil || len(missing) != 0 {
		t.Errorf("XPath(//br) = %v, %v; want none", missing, err)
	}

	if _, err := doc.XPath("//p["); err == nil {
		t.Error("XPath should reject an invalid expression")
	}
}

func TestNodeContent(t *testing.T) {
	doc, err := Parse([]byte(`<p>  a<!-- c --><b x="1" y="2">b</b> <![CDATA[<c>]]></p>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	p := doc.Root()

	content := p.Content()
	var kinds []string
	for _, n := range content {
		if n.IsText() {
			kinds = append(kinds, "text:"+n.Text())
		} else {
			kinds = append(kinds, "elem:"+n.Name())
		}
	}
	want := []string{"text:  a", "elem:b", "text: ", "text:<c>"}
	if strings.Join(kinds, "|") != strings.Join(want, "|") {
		t.Errorf("Content() = %q, want %q", kinds, want)
	}

	if len(p.Children()) != 1 {
		t.Errorf("len(Children()) = %d, want 1", len(p.Children()))
	}

	attrs := p.Children()[0].Attrs()
	if len(attrs) != 2 || attrs[0].Name != "x" || attrs[1].Value != "2" {
		t.Errorf("Attrs() = %+v, want x=1 y=2 in order", attrs)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var w Writer
	w.Declaration()
	w.Start("codeblock", []Attr{{Name: "lang", Value: "ts"}, {Name: "meta", Value: `title="a&b"`}})
	w.Start("p", nil)
	w.Text("\tif (a < b && c > d) {\r")
	w.Empty("br", nil)
	w.End("p")
	w.End("codeblock")

	data := w.Bytes()
	if result := Validate(data); !result.Valid {
		t.Fatalf("Writer output is not well-formed: %v\n%s", result.Errors, data)
	}

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if v, _ := root.Attr("meta"); v != `title="a&b"` {
		t.Errorf("meta = %q, want %q", v, `title="a&b"`)
	}
	p := root.Children()[0]
	if got := p.Content()[0].Text(); got != "\tif (a < b && c > d) {\r" {
		t.Errorf("text = %q, want the original text", got)
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a<b", "a&lt;b"},
		{"x & y", "x &amp; y"},
		{`"q"`, "&#34;q&#34;"},
		{"a\nb", "a&#xA;b"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := EscapeText(tt.in); got != tt.want {
			t.Errorf("EscapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidText(t *testing.T) {
	for _, s := range []string{"", "plain", "\tx\r\n", "é😀", "\uFFFD"} {
		if !ValidText(s) {
			t.Errorf("ValidText(%q) = false", s)
		}
	}
	for _, s := range []string{"a\x00b", "\x0B", "\x1F", "\uFFFE", "\xff"} {
		if ValidText(s) {
			t.Errorf("ValidText(%q) = true", s)
		}
	}
}

func TestValidName(t *testing.T) {
	for _, n := range []string{"Tooltip", "data-kind", "_x", "a.b"} {
		if !ValidName(n) {
			t.Errorf("ValidName(%q) = false", n)
		}
	}
	for _, n := range []string{"", "1a", "a b", "xmlns", "a:b"} {
		if ValidName(n) {
			t.Errorf("ValidName(%q) = true", n)
		}
	}
}

func TestNilSafety(t *testing.T) {
	var doc *Document
	if doc.Root() != nil {
		t.Error("nil document Root() should be nil")
	}
	n := &Node{}
	if n.Name() != "" || n.Text() != "" || n.Children() != nil || n.Attrs() != nil {
		t.Error("empty node accessors should return zero values")
	}
}
