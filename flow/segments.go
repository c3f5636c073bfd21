// Package flow turns per-cell stage labels into stage segments and pairs
// same-stage segments of adjacent display columns into links.
package flow

import "galaxy/diagram"

// BuildSegments run-length encodes one column. Cells must be ordered by row.
// Unclassified runs form their own segments.
func BuildSegments(col int, cells []diagram.Cell) []diagram.Segment {
	if len(cells) == 0 {
		return nil
	}

	var segments []diagram.Segment
	current := cells[0].Stage
	start := 0
	for row := 1; row < len(cells); row++ {
		if cells[row].Stage == current {
			continue
		}
		segments = append(segments, diagram.Segment{Col: col, Stage: current, RowStart: start, RowEnd: row})
		current = cells[row].Stage
		start = row
	}
	return append(segments, diagram.Segment{Col: col, Stage: current, RowStart: start, RowEnd: len(cells)})
}

// BuildAllSegments runs BuildSegments for every column; the result is indexed by
// raw column index.
func BuildAllSegments(m *diagram.Model) [][]diagram.Segment {
	out := make([][]diagram.Segment, m.ColumnCount())
	for col := range out {
		out[col] = BuildSegments(col, m.Column(col))
	}
	return out
}

// SegmentAt returns the segment of a column containing row.
func SegmentAt(segments []diagram.Segment, row int) (diagram.Segment, bool) {
	for _, s := range segments {
		if s.Contains(row) {
			return s, true
		}
	}
	return diagram.Segment{}, false
}
