// Package events turns ranged items into an ordered open/close event stream
// and folds that stream into a nesting tree.
//
// Both tree codecs use it: the encoder over line-index ranges and over
// line-local character ranges.
package events

import "sort"

// Item is one ranged annotation as seen by the algebra.
type Item struct {
	Start int
	End   int

	// Order is the authoring sequence. Lower orders open first and wrap
	// outermost.
	Order int

	// Priority breaks ties that Order cannot decide.
	Priority int
}

// Kind is the type of an event.
type Kind int

// Event kinds. Closes sort before opens at the same position.
const (
	Close Kind = iota
	Open
)

func (k Kind) String() string {
	if k == Open {
		return "open"
	}
	return "close"
}

// Event is an open or close of one item.
type Event struct {
	Kind Kind
	Pos  int

	// Item is the index of the item in the slice given to ToEvents.
	Item int
}

// ToEvents returns the deterministic event stream for items. Items with an
// empty or inverted range produce no events.
//
// Events are sorted by position; closes come before opens at the same
// position; opens are sorted by ascending order; closes are sorted so the
// item opened last closes first.
func ToEvents(items []Item) []Event {
	evs := make([]Event, 0, 2*len(items))
	for i, it := range items {
		if it.Start < 0 || it.Start >= it.End {
			continue
		}
		evs = append(evs,
			Event{Kind: Open, Pos: it.Start, Item: i},
			Event{Kind: Close, Pos: it.End, Item: i},
		)
	}

	sort.SliceStable(evs, func(i, j int) bool {
		a, b := evs[i], evs[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if a.Kind != b.Kind {
			return a.Kind == Close
		}
		ia, ib := items[a.Item], items[b.Item]
		if a.Kind == Open {
			return opensBefore(ia, ib, a.Item, b.Item)
		}
		if ia.Start != ib.Start {
			return ia.Start > ib.Start
		}
		return opensBefore(ib, ia, b.Item, a.Item)
	})
	return evs
}

// opensBefore reports whether a opens before b when both start together.
func opensBefore(a, b Item, ai, bi int) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return ai < bi
}
