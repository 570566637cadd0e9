package ir

import (
	"errors"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Lang: "ts",
		Lines: []Line{
			{Value: "const a = 1", Annotations: []Annotation{
				{Name: "Highlight", Scope: ScopeChar, Range: Range{Start: 6, End: 7}, Order: 1},
				{Name: "Tooltip", Scope: ScopeChar, Range: Range{Start: 0, End: 5}, Order: 0,
					Attributes: Attributes{{Key: "content", Value: "keyword"}}},
			}},
			{Value: "a++"},
		},
		Annotations: []Annotation{{Name: "Collapsible", Scope: ScopeLine, Range: Range{Start: 0, End: 2}}},
	}
}

func TestHashBytes(t *testing.T) {
	data := []byte("const a = 1")
	hash := HashBytes(data)

	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
	if hash != HashBytes(data) {
		t.Error("same data produced different hashes")
	}
	if hash == HashBytes([]byte("const b = 2")) {
		t.Error("different data produced same hash")
	}
	if HashString("const a = 1") != hash {
		t.Error("HashString and HashBytes disagree")
	}
}

func TestBlake3Bytes(t *testing.T) {
	// BLAKE3 of the empty input.
	const want = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := Blake3Bytes(nil); got != want {
		t.Errorf("Blake3Bytes(nil) = %s, want %s", got, want)
	}
	if Blake3Bytes([]byte("a")) == HashBytes([]byte("a")) {
		t.Error("BLAKE3 and SHA-256 should differ")
	}
}

func TestHashDocument(t *testing.T) {
	doc := sampleDocument()
	h1, err := HashDocument(doc)
	if err != nil {
		t.Fatalf("HashDocument failed: %v", err)
	}
	h2, _ := HashDocument(doc.Clone())
	if h1 != h2 {
		t.Error("clone hashes differently")
	}

	renumbered := Canonical(doc)
	h3, _ := HashDocument(renumbered)
	if h1 == h3 {
		t.Error("HashDocument should see annotation numbering")
	}
}

func TestFingerprintIgnoresNumbering(t *testing.T) {
	doc := sampleDocument()
	f1, err := Fingerprint(doc)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	f2, err := Fingerprint(Canonical(doc))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if f1 != f2 {
		t.Error("Fingerprint differs between a document and its canonical form")
	}

	other := doc.Clone()
	other.Lines[1].Value = "a--"
	f3, _ := Fingerprint(other)
	if f1 == f3 {
		t.Error("Fingerprint should change with the code text")
	}
}

func TestHashText(t *testing.T) {
	doc := sampleDocument()
	if got, want := HashText(doc), HashString("const a = 1\na++"); got != want {
		t.Errorf("HashText() = %s, want %s", got, want)
	}
}

func TestHashDocumentMarshalError(t *testing.T) {
	orig := jsonMarshal
	defer func() { jsonMarshal = orig }()
	jsonMarshal = func(v any) ([]byte, error) {
		return nil, errors.New("marshal failed")
	}

	if _, err := HashDocument(sampleDocument()); err == nil {
		t.Error("HashDocument should return marshal error")
	}
	if _, err := Fingerprint(sampleDocument()); err == nil {
		t.Error("Fingerprint should return marshal error")
	}
}
