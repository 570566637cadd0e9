package ir

import (
	"encoding/json"
	"testing"
)

func TestMetaJSONKeepsOrder(t *testing.T) {
	meta := Meta{
		{Key: "title", Value: "demo.ts"},
		{Key: "showLineNumbers", Value: true},
		{Key: "a", Value: "z"},
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if got, want := string(data), `{"title":"demo.ts","showLineNumbers":true,"a":"z"}`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}

	var decoded Meta
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("decoded %d entries, want 3", len(decoded))
	}
	for i := range meta {
		if decoded[i] != meta[i] {
			t.Errorf("entry %d = %v, want %v", i, decoded[i], meta[i])
		}
	}
}

func TestMetaUnmarshalRejectsOtherValues(t *testing.T) {
	tests := []string{
		`{"lines": 5}`,
		`{"tags": ["a"]}`,
		`["title"]`,
	}
	for _, input := range tests {
		var m Meta
		if err := json.Unmarshal([]byte(input), &m); err == nil {
			t.Errorf("json.Unmarshal(%s) succeeded, want error", input)
		}
	}

	var m Meta
	if err := json.Unmarshal([]byte(`null`), &m); err != nil || m != nil {
		t.Errorf("json.Unmarshal(null) = %v, %v; want nil, nil", m, err)
	}
}

func TestMetaGetSet(t *testing.T) {
	var m Meta
	m = m.Set("title", "a.ts")
	m = m.Set("showLineNumbers", true)
	m = m.Set("title", "b.ts")

	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
	if v, ok := m.Get("title"); !ok || v != "b.ts" {
		t.Errorf(`Get("title") = %v, %v; want "b.ts", true`, v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error(`Get("missing") should report false`)
	}
}

func TestDocumentJSONShape(t *testing.T) {
	doc := &Document{
		Lang: "ts",
		Meta: Meta{{Key: "title", Value: "demo.ts"}},
		Lines: []Line{{
			Value: "abcdef",
			Annotations: []Annotation{{
				Name:  "Tooltip",
				Scope: ScopeChar,
				Range: Range{Start: 1, End: 5},
			}},
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	want := `{"lang":"ts","meta":{"title":"demo.ts"},"lines":[{"value":"abcdef","annotations":[{"name":"Tooltip","scope":"char","range":{"start":1,"end":5},"order":0}]}]}`
	if string(data) != want {
		t.Errorf("json.Marshal() =\n%s\nwant\n%s", data, want)
	}
}
