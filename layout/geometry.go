package layout

import (
	"errors"
	"fmt"
	"math"

	"galaxy/core"
	"galaxy/diagram"
)

// Input is everything a layout depends on.
type Input struct {
	Model *diagram.Model
	// Segments is indexed by raw column index.
	Segments [][]diagram.Segment
	Links    []diagram.Link
	Order    diagram.ColumnOrder
	// ContainerWidth is the width available to the diagram, in pixels.
	ContainerWidth float64
}

// Column is the placement of one notebook column.
type Column struct {
	Col   int     `json:"col"`
	Slot  int     `json:"slot"`
	X     float64 `json:"x"`
	Rows  int     `json:"rows"`
	Label string  `json:"label"`
	// LabelAnchor is the middle of the label text baseline.
	LabelAnchor core.Point `json:"labelAnchor"`
	LabelBox    core.Rect  `json:"labelBox"`

	firstCell int
}

// CellBox is the rectangle of one cell.
type CellBox struct {
	Cell diagram.Cell `json:"cell"`
	Rect core.Rect    `json:"rect"`
}

// SegmentBox is the rectangle spanned by one segment.
type SegmentBox struct {
	Segment diagram.Segment `json:"segment"`
	Rect    core.Rect       `json:"rect"`
}

// Geometry is the complete pixel layout of one draw.
type Geometry struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Spacing float64 `json:"spacing"`

	// Columns are listed in display order.
	Columns      []Column     `json:"columns"`
	Cells        []CellBox    `json:"cells"`
	Segments     []SegmentBox `json:"segments"`
	Ribbons      []Ribbon     `json:"ribbons"`
	Legend       []LegendItem `json:"legend"`
	LegendBounds core.Rect    `json:"legendBounds"`

	Options Options `json:"-"`
	slotOf  map[int]int
}

// Compute lays out the diagram. The only error is an order that is not a
// permutation of the model's columns.
func Compute(in Input, opts Options) (*Geometry, error) {
	if in.Model == nil {
		return nil, errors.New("layout: model is nil")
	}
	n := in.Model.ColumnCount()
	if err := in.Order.Validate(n); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	opts = opts.normalized()

	g := &Geometry{
		Options: opts,
		Spacing: columnSpacing(n, in.ContainerWidth, opts),
		slotOf:  make(map[int]int, n),
	}

	for slot, col := range in.Order {
		g.slotOf[col] = slot
		x := opts.Padding + float64(slot)*g.Spacing
		cells := in.Model.Column(col)
		center := x + opts.CellWidth/2
		labelW := math.Min(opts.LabelWidth, g.Spacing)

		g.Columns = append(g.Columns, Column{
			Col:         col,
			Slot:        slot,
			X:           x,
			Rows:        len(cells),
			Label:       in.Model.Label(col),
			LabelAnchor: core.Point{X: center, Y: opts.LabelBaseline},
			LabelBox: core.Rect{
				X:      center - labelW/2,
				Y:      opts.LabelBaseline - 11,
				Width:  labelW,
				Height: 14,
			},
			firstCell: len(g.Cells),
		})

		for _, c := range cells {
			g.Cells = append(g.Cells, CellBox{
				Cell: c,
				Rect: core.Rect{X: x, Y: g.rowY(c.Row), Width: opts.CellWidth, Height: opts.CellHeight},
			})
		}
		if col < len(in.Segments) {
			for _, s := range in.Segments[col] {
				g.Segments = append(g.Segments, SegmentBox{Segment: s, Rect: g.segmentRect(x, s)})
			}
		}
	}

	for _, l := range in.Links {
		r, ok := g.ribbon(l)
		if ok {
			g.Ribbons = append(g.Ribbons, r)
		}
	}

	width := 2 * opts.Padding
	if n > 0 {
		width += float64(n-1)*g.Spacing + opts.CellWidth
	}
	g.Width = width

	rowsBottom := opts.TopMargin + float64(in.Model.MaxRows())*opts.CellHeight + opts.BottomMargin
	g.Legend, g.LegendBounds = layoutLegend(legendEntries(in.Model), rowsBottom, in.ContainerWidth, opts)
	g.Height = rowsBottom
	if len(g.Legend) > 0 {
		g.Height = g.LegendBounds.Max().Y
		g.Width = math.Max(g.Width, g.LegendBounds.Max().X+opts.Padding)
	}
	return g, nil
}

// columnSpacing spreads the container over n-1 gaps. A single column (or none)
// has no gaps and uses the default spacing.
func columnSpacing(n int, containerWidth float64, opts Options) float64 {
	if n <= 1 {
		return opts.DefaultSpacing
	}
	usable := containerWidth - 2*opts.Padding - opts.CellWidth
	spacing := usable / float64(n-1)
	if math.IsNaN(spacing) || spacing < opts.MinSpacing {
		return opts.MinSpacing
	}
	return spacing
}

func (g *Geometry) rowY(row int) float64 {
	return g.Options.TopMargin + float64(row)*g.Options.CellHeight
}

func (g *Geometry) segmentRect(x float64, s diagram.Segment) core.Rect {
	return core.Rect{
		X:      x,
		Y:      g.rowY(s.RowStart),
		Width:  g.Options.CellWidth,
		Height: float64(s.Len()) * g.Options.CellHeight,
	}
}

func (g *Geometry) ribbon(l diagram.Link) (Ribbon, bool) {
	src, ok := g.ColumnX(l.SourceCol)
	if !ok {
		return Ribbon{}, false
	}
	dst, ok := g.ColumnX(l.TargetCol)
	if !ok {
		return Ribbon{}, false
	}
	x0 := src + g.Options.CellWidth
	x1 := dst
	return Ribbon{
		Link:         l,
		X0:           x0,
		X1:           x1,
		XM:           (x0 + x1) / 2,
		SourceTop:    g.rowY(l.Source.RowStart),
		SourceBottom: g.rowY(l.Source.RowEnd),
		TargetTop:    g.rowY(l.Target.RowStart),
		TargetBottom: g.rowY(l.Target.RowEnd),
	}, true
}

// ColumnX returns the left edge of a column given its raw index.
func (g *Geometry) ColumnX(col int) (float64, bool) {
	slot, ok := g.slotOf[col]
	if !ok {
		return 0, false
	}
	return g.Options.Padding + float64(slot)*g.Spacing, true
}

// Column returns the placement of a column given its raw index.
func (g *Geometry) Column(col int) (Column, bool) {
	slot, ok := g.slotOf[col]
	if !ok {
		return Column{}, false
	}
	return g.Columns[slot], true
}

// CellAt returns the cell under p.
func (g *Geometry) CellAt(p core.Point) (CellBox, bool) {
	for _, c := range g.Columns {
		if p.X < c.X || p.X >= c.X+g.Options.CellWidth {
			continue
		}
		row := int(math.Floor((p.Y - g.Options.TopMargin) / g.Options.CellHeight))
		if p.Y < g.Options.TopMargin || row >= c.Rows {
			return CellBox{}, false
		}
		return g.Cells[c.firstCell+row], true
	}
	return CellBox{}, false
}

// LabelAt returns the column whose label is under p.
func (g *Geometry) LabelAt(p core.Point) (Column, bool) {
	for _, c := range g.Columns {
		if c.LabelBox.Contains(p) {
			return c, true
		}
	}
	return Column{}, false
}

// SlotForX returns the display slot nearest to a column left edge placed at x.
// Exact midpoints between two slots resolve to the right one. ok is false when
// the position falls outside the existing slots.
func (g *Geometry) SlotForX(x float64) (slot int, ok bool) {
	if len(g.Columns) == 0 || g.Spacing <= 0 {
		return -1, false
	}
	slot = int(math.Floor((x-g.Options.Padding)/g.Spacing + 0.5))
	return slot, slot >= 0 && slot < len(g.Columns)
}

// Order returns the display order the geometry was computed for.
func (g *Geometry) Order() diagram.ColumnOrder {
	order := make(diagram.ColumnOrder, len(g.Columns))
	for i, c := range g.Columns {
		order[i] = c.Col
	}
	return order
}
