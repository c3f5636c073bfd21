package render

import (
	"fmt"
	"math"

	"galaxy/core"
)

// Zoom limits of the viewport.
const (
	MinZoom = 0.5
	MaxZoom = 5
)

// Transform maps diagram coordinates to screen coordinates: screen = diagram*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform of an unzoomed, unpanned view.
var Identity = Transform{K: 1}

func clampZoom(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, k))
}

// Normalize returns t with the zoom clamped to [MinZoom, MaxZoom]. A zero
// transform normalizes to Identity.
func (t Transform) Normalize() Transform {
	t.K = clampZoom(t.K)
	return t
}

// Apply maps a diagram point to the screen.
func (t Transform) Apply(p core.Point) core.Point {
	t = t.Normalize()
	return core.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to diagram coordinates.
func (t Transform) Invert(p core.Point) core.Point {
	t = t.Normalize()
	return core.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// ZoomAt scales by factor around a screen point, which stays fixed on screen.
// The resulting zoom is clamped.
func (t Transform) ZoomAt(at core.Point, factor float64) Transform {
	t = t.Normalize()
	anchor := t.Invert(at)
	k := clampZoom(t.K * factor)
	return Transform{
		K: k,
		X: at.X - anchor.X*k,
		Y: at.Y - anchor.Y*k,
	}
}

// Pan shifts the view by a screen-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	t = t.Normalize()
	t.X += dx
	t.Y += dy
	return t
}

// String returns the SVG transform attribute value.
func (t Transform) String() string {
	t = t.Normalize()
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}
