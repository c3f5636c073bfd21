package layout

import (
	"galaxy/core"
	"galaxy/diagram"
)

// LegendItem is one swatch + label entry of the legend.
type LegendItem struct {
	Stage diagram.Stage `json:"stage"`
	Label string        `json:"label"`
	Row   int           `json:"row"`
	// Box is the full item cell, Swatch the colored square inside it.
	Box        core.Rect  `json:"box"`
	Swatch     core.Rect  `json:"swatch"`
	TextAnchor core.Point `json:"textAnchor"`
}

// legendEntries lists classified stages in first-seen order, then Unknown when
// any cell is unclassified.
func legendEntries(m *diagram.Model) []diagram.Stage {
	entries := m.Stages()
	if m.HasUnclassified() {
		entries = append(entries, diagram.Unclassified)
	}
	return entries
}

// layoutLegend places fixed-width items left to right starting at the padding and
// wraps to a new row when an item would cross the usable container width. The
// first item of a row never wraps.
func layoutLegend(stages []diagram.Stage, top, containerWidth float64, opts Options) ([]LegendItem, core.Rect) {
	if len(stages) == 0 {
		return nil, core.Rect{}
	}

	right := containerWidth - opts.Padding
	items := make([]LegendItem, 0, len(stages))
	var bounds core.Rect
	x, row := opts.Padding, 0

	for _, s := range stages {
		if x > opts.Padding && x+opts.LegendItemWidth > right {
			x = opts.Padding
			row++
		}
		y := top + float64(row)*opts.LegendRowHeight
		box := core.Rect{X: x, Y: y, Width: opts.LegendItemWidth, Height: opts.LegendRowHeight}
		items = append(items, LegendItem{
			Stage:      s,
			Label:      s.Label(),
			Row:        row,
			Box:        box,
			Swatch:     core.Rect{X: x, Y: y, Width: opts.LegendSwatch, Height: opts.LegendSwatch},
			TextAnchor: core.Point{X: x + opts.LegendSwatch + 4, Y: y + opts.LegendSwatch - 1},
		})
		bounds = bounds.Union(box)
		x += opts.LegendItemWidth
	}
	return items, bounds
}

// LegendRows returns how many rows the legend occupies.
func (g *Geometry) LegendRows() int {
	if len(g.Legend) == 0 {
		return 0
	}
	return g.Legend[len(g.Legend)-1].Row + 1
}
