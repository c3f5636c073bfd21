package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"galaxy/core"
	"galaxy/palette"
	"galaxy/render"
)

// supersample is the factor the bitmap is drawn at before it is downscaled.
const supersample = 2

// MaxPNGSide bounds either side of the drawn bitmap, in pixels.
const MaxPNGSide = 16384

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

var (
	textColor    = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	tooltipColor = color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xee}
)

// PNGExporter draws a frame into an antialiased bitmap.
type PNGExporter struct {
	style       render.LinkStyle
	scale       float64
	linkOpacity float64
	fontSize    float64
}

// NewPNGExporter creates a new PNG exporter
func NewPNGExporter(o Options) *PNGExporter {
	r := render.NewRenderer()
	return &PNGExporter{style: o.Style, scale: o.Scale, linkOpacity: r.LinkOpacity, fontSize: r.FontSize}
}

type pngContext struct {
	img   *image.RGBA
	f     *render.Frame
	scale float64
	ras   *vector.Rasterizer
	label font.Face
	tip   font.Face
}

// Export converts the frame to PNG bytes
func (e *PNGExporter) Export(f *render.Frame) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFrame
	}
	img, err := e.Image(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image draws the frame at twice the target size and downsamples it.
func (e *PNGExporter) Image(f *render.Frame) (*image.RGBA, error) {
	width, height := f.Viewport.Width, f.Viewport.Height
	if f.Geometry != nil {
		k := f.Transform.Normalize().K
		if width <= 0 {
			width = f.Geometry.Width * k
		}
		if height <= 0 {
			height = f.Geometry.Height * k
		}
	}
	w := max(1, int(math.Ceil(width*e.scale)))
	h := max(1, int(math.Ceil(height*e.scale)))
	if w*supersample > MaxPNGSide || h*supersample > MaxPNGSide {
		return nil, fmt.Errorf("bitmap of %dx%d exceeds %d pixels per side", w, h, MaxPNGSide/supersample)
	}

	large := image.NewRGBA(image.Rect(0, 0, w*supersample, h*supersample))
	draw.Draw(large, large.Bounds(), image.NewUniform(palette.Background), image.Point{}, draw.Src)

	if f.Geometry != nil {
		ctx := &pngContext{
			img:   large,
			f:     f,
			scale: e.scale * supersample,
			ras:   vector.NewRasterizer(large.Bounds().Dx(), large.Bounds().Dy()),
		}
		k := f.Transform.Normalize().K
		var err error
		if ctx.label, err = newFace(e.fontSize * k * ctx.scale); err != nil {
			return nil, err
		}
		if ctx.tip, err = newFace(e.fontSize * ctx.scale); err != nil {
			return nil, err
		}

		if e.style == render.LinksBelow {
			ctx.ribbons(e.linkOpacity)
			ctx.cells()
		} else {
			ctx.cells()
			ctx.ribbons(e.linkOpacity)
		}
		ctx.labels()
		ctx.legend()
		ctx.tooltip()
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), large, large.Bounds(), draw.Over, nil)
	return out, nil
}

func newFace(size float64) (font.Face, error) {
	fnt, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    max(size, 1),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func withOpacity(c colorful.Color, opacity float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(255 * math.Max(0, math.Min(1, opacity))))}
}

// pt maps a diagram point to bitmap pixels.
func (ctx *pngContext) pt(p core.Point) (float32, float32) {
	s := ctx.f.Transform.Apply(p)
	return float32(s.X * ctx.scale), float32(s.Y * ctx.scale)
}

func (ctx *pngContext) fill(src color.Color) {
	ctx.ras.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(src), image.Point{})
	ctx.ras.Reset(ctx.img.Bounds().Dx(), ctx.img.Bounds().Dy())
}

func (ctx *pngContext) rect(r core.Rect, src color.Color) {
	x0, y0 := ctx.pt(core.Point{X: r.X, Y: r.Y})
	x1, y1 := ctx.pt(r.Max())
	ctx.screenRect(x0, y0, x1, y1, src)
}

func (ctx *pngContext) screenRect(x0, y0, x1, y1 float32, src color.Color) {
	ctx.ras.MoveTo(x0, y0)
	ctx.ras.LineTo(x1, y0)
	ctx.ras.LineTo(x1, y1)
	ctx.ras.LineTo(x0, y1)
	ctx.ras.ClosePath()
	ctx.fill(src)
}

func (ctx *pngContext) cells() {
	for _, c := range ctx.f.Geometry.Cells {
		ctx.rect(c.Rect, ctx.f.Colors.ColorFor(c.Cell.Stage))
	}
}

// ribbons traces the same two cubic edges as the SVG path.
func (ctx *pngContext) ribbons(opacity float64) {
	for _, r := range ctx.f.Geometry.Ribbons {
		x0, st := ctx.pt(core.Point{X: r.X0, Y: r.SourceTop})
		_, sb := ctx.pt(core.Point{X: r.X0, Y: r.SourceBottom})
		x1, tt := ctx.pt(core.Point{X: r.X1, Y: r.TargetTop})
		_, tb := ctx.pt(core.Point{X: r.X1, Y: r.TargetBottom})
		xm, _ := ctx.pt(core.Point{X: r.XM})

		ctx.ras.MoveTo(x0, st)
		ctx.ras.CubeTo(xm, st, xm, tt, x1, tt)
		ctx.ras.LineTo(x1, tb)
		ctx.ras.CubeTo(xm, tb, xm, sb, x0, sb)
		ctx.ras.ClosePath()
		ctx.fill(withOpacity(ctx.f.Colors.ColorFor(r.Link.Stage), opacity))
	}
}

func drawString(dst draw.Image, face font.Face, x, y float32, text string, src color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(src),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

func (ctx *pngContext) labels() {
	for _, c := range ctx.f.Geometry.Columns {
		at := c.LabelAnchor
		at.X += ctx.f.LabelOffset(c.Col)
		x, y := ctx.pt(at)
		width := font.MeasureString(ctx.label, c.Label)
		drawString(ctx.img, ctx.label, x-float32(width)/128, y, c.Label, textColor)
	}
}

func (ctx *pngContext) legend() {
	for _, item := range ctx.f.Geometry.Legend {
		ctx.rect(item.Swatch, ctx.f.Colors.ColorFor(item.Stage))
		x, y := ctx.pt(item.TextAnchor)
		drawString(ctx.img, ctx.label, x, y, item.Label, textColor)
	}
}

// tooltip is drawn in screen space, below and right of the pointer.
func (ctx *pngContext) tooltip() {
	tt := ctx.f.Tooltip
	if !tt.Visible || len(tt.Lines) == 0 {
		return
	}
	m := ctx.tip.Metrics()
	lineHeight := float32(m.Height) / 64
	pad := float32(4 * ctx.scale)
	var width fixed.Int26_6
	for _, l := range tt.Lines {
		width = max(width, font.MeasureString(ctx.tip, l))
	}

	x := float32(tt.At.X*ctx.scale) + 3*pad
	y := float32(tt.At.Y*ctx.scale) + 3*pad
	w := float32(width)/64 + 2*pad
	h := lineHeight*float32(len(tt.Lines)) + 2*pad
	if limit := float32(ctx.img.Bounds().Dx()); x+w > limit {
		x = max(0, limit-w)
	}
	ctx.screenRect(x, y, x+w, y+h, tooltipColor)
	for i, l := range tt.Lines {
		base := y + pad + lineHeight*float32(i) + float32(m.Ascent)/64
		drawString(ctx.img, ctx.tip, x+pad, base, l, palette.Background)
	}
}

// GetFileExtension returns the recommended file extension
func (e *PNGExporter) GetFileExtension() string {
	return ".png"
}

// GetFormatName returns the format name
func (e *PNGExporter) GetFormatName() string {
	return "PNG"
}
