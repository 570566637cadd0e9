package ir

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDocumentValid(t *testing.T) {
	doc := &Document{
		Lines: []Line{
			{Value: "hello", Annotations: []Annotation{
				{Name: "Tooltip", Scope: ScopeChar, Range: Range{Start: 0, End: 5}},
				{Name: "Highlight", Scope: ScopeChar, Range: Range{Start: 1, End: 3}, Order: 1},
			}},
			{Value: "world", Annotations: []Annotation{
				{Name: "fold", Scope: ScopeDocument, Range: Range{Start: 6, End: 8}, Order: 2},
			}},
		},
		Annotations: []Annotation{
			{Name: "Collapsible", Scope: ScopeLine, Range: Range{Start: 0, End: 2}},
		},
	}

	if errs := ValidateDocument(doc); len(errs) > 0 {
		t.Errorf("ValidateDocument returned errors for valid document: %v", errs)
	}
}

func TestValidateDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantMsg string
	}{
		{
			name: "line annotation beyond block",
			doc: &Document{
				Lines:       []Line{{Value: "a"}},
				Annotations: []Annotation{{Name: "Mark", Scope: ScopeLine, Range: Range{Start: 0, End: 3}}},
			},
			wantMsg: "exceeds 1 lines",
		},
		{
			name: "block annotation with char scope",
			doc: &Document{
				Lines:       []Line{{Value: "a"}},
				Annotations: []Annotation{{Name: "Mark", Scope: ScopeChar, Range: Range{Start: 0, End: 1}}},
			},
			wantMsg: "must have line scope",
		},
		{
			name: "inline annotation with line scope",
			doc: &Document{
				Lines: []Line{{Value: "abc", Annotations: []Annotation{
					{Name: "Mark", Scope: ScopeLine, Range: Range{Start: 0, End: 1}},
				}}},
			},
			wantMsg: "must have char or document scope",
		},
		{
			name: "inline annotation outside its line",
			doc: &Document{
				Lines: []Line{
					{Value: "abc"},
					{Value: "def", Annotations: []Annotation{
						{Name: "Mark", Scope: ScopeChar, Range: Range{Start: 1, End: 2}},
					}},
				},
			},
			wantMsg: "outside line 4-7",
		},
		{
			name: "partial overlap",
			doc: &Document{
				Lines: []Line{{Value: "abcdef", Annotations: []Annotation{
					{Name: "A", Scope: ScopeChar, Range: Range{Start: 0, End: 3}},
					{Name: "B", Scope: ScopeChar, Range: Range{Start: 2, End: 5}, Order: 1},
				}}},
			},
			wantMsg: "partially overlaps",
		},
		{
			name: "empty range",
			doc: &Document{
				Lines: []Line{{Value: "abc", Annotations: []Annotation{
					{Name: "A", Scope: ScopeChar, Range: Range{Start: 2, End: 2}},
				}}},
			},
			wantMsg: "empty or inverted range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateDocument(tt.doc)
			if len(errs) == 0 {
				t.Fatal("ValidateDocument returned no errors")
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.wantMsg)
			}
		})
	}
}

func TestValidateAnnotation(t *testing.T) {
	valid := Annotation{Name: "Tooltip", Scope: ScopeChar, Range: Range{Start: 0, End: 1}}
	if errs := ValidateAnnotation(valid); len(errs) > 0 {
		t.Errorf("ValidateAnnotation(valid) = %v", errs)
	}

	invalid := Annotation{Scope: Scope("block"), Range: Range{Start: 3, End: 1}, Order: -1}
	errs := ValidateAnnotation(invalid)
	if len(errs) != 4 {
		t.Errorf("ValidateAnnotation(invalid) returned %d errors, want 4: %v", len(errs), errs)
	}
}

func TestValidationErrorPaths(t *testing.T) {
	doc := &Document{
		Lines: []Line{{Value: "abc", Annotations: []Annotation{
			{Name: "", Scope: ScopeChar, Range: Range{Start: 0, End: 1}},
		}}},
	}

	errs := ValidateDocument(doc)
	if len(errs) != 1 {
		t.Fatalf("ValidateDocument returned %d errors, want 1: %v", len(errs), errs)
	}
	var ve *ValidationError
	if !errors.As(errs[0], &ve) {
		t.Fatalf("error is %T, want *ValidationError", errs[0])
	}
	if ve.Path != "lines[0].annotations[0]" {
		t.Errorf("Path = %q, want %q", ve.Path, "lines[0].annotations[0]")
	}
}

func TestValidateDocumentNonValidationErrors(t *testing.T) {
	orig := validateAnnotationFn
	defer func() { validateAnnotationFn = orig }()
	validateAnnotationFn = func(Annotation) []error {
		return []error{errors.New("plain error")}
	}

	doc := &Document{
		Lines:       []Line{{Value: "a"}},
		Annotations: []Annotation{{Name: "Mark", Scope: ScopeLine, Range: Range{Start: 0, End: 1}}},
	}
	errs := ValidateDocument(doc)
	if len(errs) != 1 {
		t.Fatalf("ValidateDocument returned %d errors, want 1", len(errs))
	}
	if got, want := errs[0].Error(), "annotations[0]: plain error"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestIsWellNested(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   bool
	}{
		{"disjoint", []Range{{0, 2}, {3, 5}}, true},
		{"adjacent", []Range{{0, 2}, {2, 5}}, true},
		{"nested", []Range{{0, 10}, {2, 5}, {3, 4}}, true},
		{"identical", []Range{{1, 4}, {1, 4}}, true},
		{"crossing", []Range{{0, 3}, {2, 5}}, false},
		{"crossing after sibling", []Range{{0, 10}, {1, 2}, {5, 12}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anns := make([]Annotation, len(tt.ranges))
			for i, r := range tt.ranges {
				anns[i] = Annotation{Name: "A", Scope: ScopeChar, Range: r}
			}
			if got := IsWellNested(anns); got != tt.want {
				t.Errorf("IsWellNested(%v) = %v, want %v", tt.ranges, got, tt.want)
			}
		})
	}
}
