// Package validation checks a computed diagram against the structural rules of
// stage flows: segments partition their column, links pair equal stages between
// adjacent display columns, and geometry agrees with both.
package validation

import (
	"fmt"
	"math"

	"galaxy/diagram"
	"galaxy/layout"
)

// ValidationError represents one broken rule with the column it was found in.
type ValidationError struct {
	Check   string
	Col     int
	Message string
}

func (e ValidationError) String() string {
	if e.Col < 0 {
		return fmt.Sprintf("[%s] %s", e.Check, e.Message)
	}
	return fmt.Sprintf("[%s] column %d: %s", e.Check, e.Col, e.Message)
}

// Input is a diagram to validate. Geometry may be nil to skip the pixel checks.
type Input struct {
	Model    *diagram.Model
	Segments [][]diagram.Segment
	Links    []diagram.Link
	Order    diagram.ColumnOrder
	Geometry *layout.Geometry
}

// LayoutValidator collects rule violations of one diagram.
type LayoutValidator struct {
	errors []ValidationError
	// Tolerance for pixel comparisons.
	epsilon float64
}

// NewLayoutValidator creates a new validator with default settings.
func NewLayoutValidator() *LayoutValidator {
	return &LayoutValidator{epsilon: 1e-6}
}

// Validate runs every check and returns the violations found.
func (v *LayoutValidator) Validate(in Input) []ValidationError {
	v.errors = nil
	if in.Model == nil {
		v.addError("model", -1, "model is nil")
		return v.errors
	}
	if err := in.Order.Validate(in.Model.ColumnCount()); err != nil {
		v.addError("order", -1, "%v", err)
		return v.errors
	}
	if len(in.Segments) != in.Model.ColumnCount() {
		v.addError("segments", -1, "have segments for %d columns, want %d", len(in.Segments), in.Model.ColumnCount())
		return v.errors
	}

	for col := 0; col < in.Model.ColumnCount(); col++ {
		v.checkPartition(in.Model, col, in.Segments[col])
	}
	v.checkLinks(in)
	if in.Geometry != nil {
		v.checkGeometry(in)
	}
	return v.errors
}

// checkPartition verifies that segments are ordered, contiguous, maximal and
// cover every row of the column exactly once.
func (v *LayoutValidator) checkPartition(m *diagram.Model, col int, segs []diagram.Segment) {
	cells := m.Column(col)
	next := 0
	for i, s := range segs {
		if s.Col != col {
			v.addError("partition", col, "segment %d claims column %d", i, s.Col)
		}
		if s.Len() <= 0 {
			v.addError("partition", col, "segment %d is empty", i)
			continue
		}
		if s.RowStart != next {
			v.addError("partition", col, "segment %d starts at row %d, want %d", i, s.RowStart, next)
		}
		for row := s.RowStart; row < s.RowEnd && row < len(cells); row++ {
			if cells[row].Stage != s.Stage {
				v.addError("partition", col, "row %d has stage %q inside a %q segment", row, cells[row].Stage.Label(), s.Stage.Label())
				break
			}
		}
		if i > 0 && segs[i-1].Stage == s.Stage {
			v.addError("maximal", col, "segments %d and %d share stage %q", i-1, i, s.Stage.Label())
		}
		next = s.RowEnd
	}
	if next != len(cells) {
		v.addError("partition", col, "segments cover %d rows, column has %d", next, len(cells))
	}
}

type pairKey struct {
	source, target int
	stage          diagram.Stage
}

// checkLinks verifies that every link joins equal classified stages across
// adjacent display columns and that each pair carries min(a, b) links per stage.
func (v *LayoutValidator) checkLinks(in Input) {
	adjacent := make(map[[2]int]bool, len(in.Order))
	for i := 0; i+1 < len(in.Order); i++ {
		adjacent[[2]int{in.Order[i], in.Order[i+1]}] = true
	}

	got := map[pairKey]int{}
	for i, l := range in.Links {
		if !l.Stage.Known() {
			v.addError("links", l.SourceCol, "link %d connects unclassified segments", i)
		}
		if l.Source.Stage != l.Stage || l.Target.Stage != l.Stage {
			v.addError("links", l.SourceCol, "link %d joins %q to %q as %q", i, l.Source.Stage.Label(), l.Target.Stage.Label(), l.Stage.Label())
		}
		if !adjacent[[2]int{l.SourceCol, l.TargetCol}] {
			v.addError("links", l.SourceCol, "link %d joins columns %d and %d which are not adjacent", i, l.SourceCol, l.TargetCol)
		}
		got[pairKey{l.SourceCol, l.TargetCol, l.Stage}]++
	}

	for i := 0; i+1 < len(in.Order); i++ {
		src, dst := in.Order[i], in.Order[i+1]
		a, b := countStages(in.Segments[src]), countStages(in.Segments[dst])
		for stage, na := range a {
			want := min(na, b[stage])
			if n := got[pairKey{src, dst, stage}]; n != want {
				v.addError("links", src, "%d %q links to column %d, want %d", n, stage.Label(), dst, want)
			}
		}
		for stage := range b {
			if _, ok := a[stage]; !ok && got[pairKey{src, dst, stage}] != 0 {
				v.addError("links", src, "links stage %q missing from the column", stage.Label())
			}
		}
	}
}

func countStages(segs []diagram.Segment) map[diagram.Stage]int {
	out := map[diagram.Stage]int{}
	for _, s := range segs {
		if s.Stage.Known() {
			out[s.Stage]++
		}
	}
	return out
}

// checkGeometry verifies column positions, ribbon endpoints and finite sizes.
func (v *LayoutValidator) checkGeometry(in Input) {
	g := in.Geometry
	opts := g.Options

	for _, n := range []float64{g.Width, g.Height, g.Spacing} {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			v.addError("geometry", -1, "non-finite canvas dimension %v", n)
			return
		}
	}

	for slot, col := range in.Order {
		x, ok := g.ColumnX(col)
		if !ok {
			v.addError("geometry", col, "column has no position")
			continue
		}
		if want := opts.Padding + float64(slot)*g.Spacing; math.Abs(x-want) > v.epsilon {
			v.addError("geometry", col, "x = %v, want %v for slot %d", x, want, slot)
		}
	}

	if len(g.Ribbons) != len(in.Links) {
		v.addError("geometry", -1, "%d ribbons for %d links", len(g.Ribbons), len(in.Links))
	}
	for _, r := range g.Ribbons {
		sx, _ := g.ColumnX(r.Link.SourceCol)
		tx, _ := g.ColumnX(r.Link.TargetCol)
		checks := []struct {
			name      string
			got, want float64
		}{
			{"source x", r.X0, sx + opts.CellWidth},
			{"target x", r.X1, tx},
			{"source top", r.SourceTop, opts.TopMargin + float64(r.Link.Source.RowStart)*opts.CellHeight},
			{"source bottom", r.SourceBottom, opts.TopMargin + float64(r.Link.Source.RowEnd)*opts.CellHeight},
			{"target top", r.TargetTop, opts.TopMargin + float64(r.Link.Target.RowStart)*opts.CellHeight},
			{"target bottom", r.TargetBottom, opts.TopMargin + float64(r.Link.Target.RowEnd)*opts.CellHeight},
		}
		for _, c := range checks {
			if math.Abs(c.got-c.want) > v.epsilon {
				v.addError("ribbon", r.Link.SourceCol, "%s = %v, want %v", c.name, c.got, c.want)
			}
		}
	}
}

func (v *LayoutValidator) addError(check string, col int, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{
		Check:   check,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
	})
}
