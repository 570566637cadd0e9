package ir

import (
	"fmt"
	"sort"
)

// validateAnnotationFn is injectable for testing error type handling.
var validateAnnotationFn = ValidateAnnotation

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// newValidationError creates a new ValidationError.
func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// ValidateDocument validates a Document and returns all validation errors.
//
// A valid document has only non-empty ranges, inline annotations that stay
// inside their own line, line annotations that stay inside the block, and
// well-nested annotations at both levels.
func ValidateDocument(d *Document) []error {
	var errs []error

	lineCount := len(d.Lines)
	for i, ann := range d.Annotations {
		path := fmt.Sprintf("annotations[%d]", i)
		errs = append(errs, prefixErrors(path, validateAnnotationFn(ann))...)
		if ann.Scope != ScopeLine {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("block annotation must have line scope, got %q", ann.Scope)))
		}
		if ann.Range.End > lineCount {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("range %d-%d exceeds %d lines", ann.Range.Start, ann.Range.End, lineCount)))
		}
	}
	if err := checkNesting("annotations", d.Annotations); err != nil {
		errs = append(errs, err)
	}

	offsets := d.LineOffsets()
	for li, line := range d.Lines {
		lineRange := Range{Start: offsets[li], End: offsets[li] + RuneLen(line.Value)}
		for i, ann := range line.Annotations {
			path := fmt.Sprintf("lines[%d].annotations[%d]", li, i)
			errs = append(errs, prefixErrors(path, validateAnnotationFn(ann))...)
			if !ann.Scope.IsInline() {
				errs = append(errs, newValidationError(path,
					fmt.Sprintf("line annotation must have char or document scope, got %q", ann.Scope)))
			}
			if ann.Range.Valid() && !lineRange.Contains(ann.Range) {
				errs = append(errs, newValidationError(path,
					fmt.Sprintf("range %d-%d is outside line %d-%d",
						ann.Range.Start, ann.Range.End, lineRange.Start, lineRange.End)))
			}
		}
		if err := checkNesting(fmt.Sprintf("lines[%d].annotations", li), line.Annotations); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// ValidateAnnotation validates a single annotation in isolation.
func ValidateAnnotation(a Annotation) []error {
	var errs []error

	if a.Name == "" {
		errs = append(errs, newValidationError("", "name is required"))
	}
	if !a.Scope.IsValid() {
		errs = append(errs, newValidationError("scope", fmt.Sprintf("invalid scope: %q", a.Scope)))
	}
	if !a.Range.Valid() {
		errs = append(errs, newValidationError("range",
			fmt.Sprintf("empty or inverted range %d-%d", a.Range.Start, a.Range.End)))
	}
	if a.Order < 0 {
		errs = append(errs, newValidationError("order", "order must not be negative"))
	}

	return errs
}

// IsWellNested returns true if every pair of ranges is either disjoint or
// one contains the other.
func IsWellNested(anns []Annotation) bool {
	return checkNesting("", anns) == nil
}

// checkNesting reports the first pair of partially overlapping ranges.
func checkNesting(path string, anns []Annotation) error {
	idx := make([]int, 0, len(anns))
	for i, a := range anns {
		if a.Range.Valid() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := anns[idx[i]].Range, anns[idx[j]].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})

	var stack []int
	for _, i := range idx {
		r := anns[i].Range
		for len(stack) > 0 && anns[stack[len(stack)-1]].Range.End <= r.Start {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			top := anns[stack[len(stack)-1]]
			if !top.Range.Contains(r) {
				return newValidationError(path, fmt.Sprintf("%s %d-%d partially overlaps %s %d-%d",
					top.Name, top.Range.Start, top.Range.End, anns[i].Name, r.Start, r.End))
			}
		}
		stack = append(stack, i)
	}
	return nil
}

func prefixErrors(path string, errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if ve, ok := err.(*ValidationError); ok {
			p := path
			if ve.Path != "" {
				p = path + "." + ve.Path
			}
			out = append(out, newValidationError(p, ve.Message))
			continue
		}
		out = append(out, newValidationError(path, err.Error()))
	}
	return out
}
