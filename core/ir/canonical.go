package ir

import "sort"

// Canonical returns a copy of the document with every annotation order
// renumbered into tree visitation order.
//
// Line annotations are sorted by start, then longest first, then by their
// previous order. Inline annotations are numbered line by line, each line
// sorted the same way. This is the order a depth-first walk of the nesting
// tree visits them in; order only decides nesting between identical
// ranges, and their relative order is kept, so the canonical document
// renders exactly like the original.
func Canonical(d *Document) *Document {
	out := d.Clone()

	sortByVisit(out.Annotations)
	for i := range out.Annotations {
		out.Annotations[i].Order = i
	}

	next := 0
	for li := range out.Lines {
		anns := out.Lines[li].Annotations
		sortByVisit(anns)
		for i := range anns {
			anns[i].Order = next
			next++
		}
	}
	return out
}

// IsCanonical returns true if Canonical would not change any order.
func IsCanonical(d *Document) bool {
	c := Canonical(d)
	for i := range d.Annotations {
		if d.Annotations[i].Order != c.Annotations[i].Order || d.Annotations[i].Range != c.Annotations[i].Range {
			return false
		}
	}
	for li := range d.Lines {
		for i := range d.Lines[li].Annotations {
			a, b := d.Lines[li].Annotations[i], c.Lines[li].Annotations[i]
			if a.Order != b.Order || a.Range != b.Range {
				return false
			}
		}
	}
	return true
}

// SortByOrder sorts annotations by ascending order, keeping ties stable.
func SortByOrder(anns []Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].Order < anns[j].Order
	})
}

// VisitLess orders annotations the way a depth-first walk of their nesting
// tree visits them: by start, then the enclosing (longer) range first, then
// by order.
func VisitLess(a, b Annotation) bool {
	if a.Range.Start != b.Range.Start {
		return a.Range.Start < b.Range.Start
	}
	if a.Range.End != b.Range.End {
		return a.Range.End > b.Range.End
	}
	return a.Order < b.Order
}

func sortByVisit(anns []Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return VisitLess(anns[i], anns[j])
	})
}
