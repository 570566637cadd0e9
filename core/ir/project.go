package ir

// Piece is the part of an absolute span that falls on one line.
type Piece struct {
	// Line is the index of the line the piece falls on.
	Line int

	// Range is the absolute range of the piece.
	Range Range
}

// Project splits an absolute span over the block text into one piece per
// line it overlaps. Positions that fall on the "\n" separators belong to no
// line and are dropped. offsets and lengths describe the lines, as returned
// by LineOffsets and RuneLen.
func Project(span Range, offsets, lengths []int) []Piece {
	if !span.Valid() {
		return nil
	}
	var pieces []Piece
	for i, start := range offsets {
		lineRange := Range{Start: start, End: start + lengths[i]}
		if lineRange.Start >= span.End {
			break
		}
		part := span.Intersect(lineRange)
		if part.Valid() {
			pieces = append(pieces, Piece{Line: i, Range: part})
		}
	}
	return pieces
}

// LineLengths returns the code point length of each line.
func (d *Document) LineLengths() []int {
	lengths := make([]int, len(d.Lines))
	for i, line := range d.Lines {
		lengths[i] = RuneLen(line.Value)
	}
	return lengths
}
