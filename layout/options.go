// Package layout computes the pixel geometry of a stage flow diagram.
//
// Compute is a pure function of the model, its segments and links, the column
// display order and the container width. Nothing here touches a rendering surface,
// so every coordinate can be checked in plain unit tests.
package layout

// Options fixes the constant dimensions of the diagram, in pixels.
type Options struct {
	CellWidth  float64
	CellHeight float64

	// Padding is the horizontal margin on both sides of the columns.
	Padding float64
	// TopMargin is the y of row 0. Column labels sit above it.
	TopMargin float64
	// BottomMargin separates the last row from the legend.
	BottomMargin float64
	// LabelBaseline is the y of the column label text baseline.
	LabelBaseline float64
	// LabelWidth bounds the hit box of a column label.
	LabelWidth float64

	// DefaultSpacing is the column spacing used when there are no gaps to distribute.
	DefaultSpacing float64
	// MinSpacing keeps columns apart when the container is too narrow.
	MinSpacing float64

	LegendItemWidth float64
	LegendRowHeight float64
	LegendSwatch    float64
}

// DefaultOptions returns the dimensions of the notebook flow widget.
func DefaultOptions() Options {
	return Options{
		CellWidth:       5,
		CellHeight:      6,
		Padding:         40,
		TopMargin:       40,
		BottomMargin:    20,
		LabelBaseline:   20,
		LabelWidth:      56,
		DefaultSpacing:  60,
		MinSpacing:      7,
		LegendItemWidth: 120,
		LegendRowHeight: 18,
		LegendSwatch:    10,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.CellWidth <= 0 {
		o.CellWidth = d.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = d.CellHeight
	}
	if o.DefaultSpacing <= 0 {
		o.DefaultSpacing = d.DefaultSpacing
	}
	if o.MinSpacing < o.CellWidth+1 {
		o.MinSpacing = o.CellWidth + 2
	}
	if o.LegendItemWidth <= 0 {
		o.LegendItemWidth = d.LegendItemWidth
	}
	if o.LegendRowHeight <= 0 {
		o.LegendRowHeight = d.LegendRowHeight
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = d.LabelWidth
	}
	return o
}
