package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"galaxy/canvas"
	"galaxy/core"
	"galaxy/palette"
)

// RasterOptions controls rasterization onto a character grid.
type RasterOptions struct {
	// ScaleX and ScaleY are screen pixels per character.
	ScaleX      float64
	ScaleY      float64
	Style       LinkStyle
	LinkOpacity float64
	Text        colorful.Color
}

// DefaultRasterOptions maps one cell of the diagram to one character.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		ScaleX:      5,
		ScaleY:      6,
		Style:       LinksAbove,
		LinkOpacity: 0.4,
		Text:        colorful.Color{R: 0.2, G: 0.2, B: 0.2},
	}
}

type rasterizer struct {
	f    *Frame
	opts RasterOptions
	grid *canvas.Grid
}

// Rasterize draws a frame onto a new grid sized to the viewport, or to the
// diagram when the frame has no viewport.
func Rasterize(f *Frame, opts RasterOptions) (*canvas.Grid, error) {
	if opts.ScaleX <= 0 || opts.ScaleY <= 0 {
		d := DefaultRasterOptions()
		opts.ScaleX, opts.ScaleY = d.ScaleX, d.ScaleY
	}

	width, height := f.Viewport.Width, f.Viewport.Height
	if f.Geometry != nil {
		if width <= 0 {
			width = f.Geometry.Width * f.Transform.Normalize().K
		}
		if height <= 0 {
			height = f.Geometry.Height * f.Transform.Normalize().K
		}
	}
	cols := max(1, int(math.Ceil(width/opts.ScaleX)))
	rows := max(1, int(math.Ceil(height/opts.ScaleY)))

	grid, err := canvas.NewGrid(cols, rows, palette.Background)
	if err != nil {
		return nil, err
	}
	if f.Geometry == nil {
		return grid, nil
	}

	r := &rasterizer{f: f, opts: opts, grid: grid}
	if opts.Style == LinksBelow {
		r.ribbons()
		r.cells()
	} else {
		r.cells()
		r.ribbons()
	}
	r.labels()
	r.legend()
	r.tooltip()
	return grid, nil
}

// span converts a screen interval to the character range covering it. Every
// non-empty interval covers at least one character.
func span(s0, s1, scale float64) (int, int) {
	start := int(math.Round(s0 / scale))
	end := int(math.Round(s1 / scale))
	if end <= start {
		end = start + 1
	}
	return start, end
}

func (r *rasterizer) fillRect(rect core.Rect, c colorful.Color) {
	t := r.f.Transform
	p0 := t.Apply(core.Point{X: rect.X, Y: rect.Y})
	p1 := t.Apply(rect.Max())
	x0, x1 := span(p0.X, p1.X, r.opts.ScaleX)
	y0, y1 := span(p0.Y, p1.Y, r.opts.ScaleY)
	r.grid.FillRect(x0, y0, x1, y1, c)
}

func (r *rasterizer) cells() {
	for _, c := range r.f.Geometry.Cells {
		r.fillRect(c.Rect, r.f.Colors.ColorFor(c.Cell.Stage))
	}
}

// ribbons samples the center of every character against each ribbon's span.
func (r *rasterizer) ribbons() {
	cols, rows := r.grid.Size()
	t := r.f.Transform
	for _, rb := range r.f.Geometry.Ribbons {
		color := r.f.Colors.ColorFor(rb.Link.Stage)
		for cx := 0; cx < cols; cx++ {
			x := t.Invert(core.Point{X: (float64(cx) + 0.5) * r.opts.ScaleX}).X
			top, bottom, ok := rb.SpanAt(x)
			if !ok {
				continue
			}
			for cy := 0; cy < rows; cy++ {
				y := t.Invert(core.Point{Y: (float64(cy) + 0.5) * r.opts.ScaleY}).Y
				if y >= top && y < bottom {
					r.grid.Blend(cx, cy, color, r.opts.LinkOpacity)
				}
			}
		}
	}
}

// textAt returns the character position of a text baseline point.
func (r *rasterizer) textAt(p core.Point) (int, int) {
	s := r.f.Transform.Apply(p)
	return int(math.Round(s.X / r.opts.ScaleX)), int(math.Floor((s.Y - 1) / r.opts.ScaleY))
}

func (r *rasterizer) labels() {
	g := r.f.Geometry
	k := r.f.Transform.Normalize().K
	maxWidth := max(1, int(g.Spacing*k/r.opts.ScaleX)-1)
	for _, c := range g.Columns {
		at := c.LabelAnchor
		at.X += r.f.LabelOffset(c.Col)
		text := canvas.Truncate(c.Label, maxWidth)
		x, y := r.textAt(at)
		r.grid.DrawText(x-canvas.MeasureText(text)/2, y, text, r.opts.Text)
	}
}

func (r *rasterizer) legend() {
	g := r.f.Geometry
	k := r.f.Transform.Normalize().K
	for _, item := range g.Legend {
		r.fillRect(item.Swatch, r.f.Colors.ColorFor(item.Stage))
		maxWidth := max(1, int((item.Box.Width-item.Swatch.Width)*k/r.opts.ScaleX)-1)
		x, y := r.textAt(item.TextAnchor)
		r.grid.DrawText(x, y, canvas.Truncate(item.Label, maxWidth), r.opts.Text)
	}
}

// tooltip draws in screen space, below and right of the pointer.
func (r *rasterizer) tooltip() {
	tt := r.f.Tooltip
	if !tt.Visible || len(tt.Lines) == 0 {
		return
	}
	width := 0
	for _, l := range tt.Lines {
		width = max(width, canvas.MeasureText(l))
	}
	x := int(tt.At.X/r.opts.ScaleX) + 2
	y := int(tt.At.Y/r.opts.ScaleY) + 1
	cols, _ := r.grid.Size()
	if x+width+2 > cols {
		x = max(0, cols-width-2)
	}
	bg := colorful.Color{R: 0.15, G: 0.15, B: 0.15}
	r.grid.FillRect(x, y, x+width+2, y+len(tt.Lines), bg)
	for i, l := range tt.Lines {
		r.grid.DrawText(x+1, y+i, l, palette.Background)
	}
}
