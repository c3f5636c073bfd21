package layout

import (
	"fmt"
	"math"
	"strconv"

	"galaxy/diagram"
)

// Ribbon is the flow shape of one link: the area between two cubic curves running
// from the source segment's right edge to the target segment's left edge.
// The endpoints are exactly the segment spans on both sides.
type Ribbon struct {
	Link diagram.Link `json:"link"`

	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	// XM is the x of every control point, halfway between the columns' inner edges.
	XM float64 `json:"xm"`

	SourceTop    float64 `json:"sourceTop"`
	SourceBottom float64 `json:"sourceBottom"`
	TargetTop    float64 `json:"targetTop"`
	TargetBottom float64 `json:"targetBottom"`
}

// Path returns the SVG path data of the ribbon.
func (r Ribbon) Path() string {
	return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s L%s,%s C%s,%s %s,%s %s,%s Z",
		num(r.X0), num(r.SourceTop),
		num(r.XM), num(r.SourceTop), num(r.XM), num(r.TargetTop), num(r.X1), num(r.TargetTop),
		num(r.X1), num(r.TargetBottom),
		num(r.XM), num(r.TargetBottom), num(r.XM), num(r.SourceBottom), num(r.X0), num(r.SourceBottom),
	)
}

// SpanAt returns the vertical extent of the ribbon at x.
func (r Ribbon) SpanAt(x float64) (top, bottom float64, ok bool) {
	if x < r.X0 || x > r.X1 || r.X1 <= r.X0 {
		return 0, 0, false
	}
	s := smoothstep(r.paramAt(x))
	top = r.SourceTop + (r.TargetTop-r.SourceTop)*s
	bottom = r.SourceBottom + (r.TargetBottom-r.SourceBottom)*s
	return top, bottom, true
}

// paramAt inverts x(t) of the curve. Both control points share XM, so x(t) is
// monotonic between X0 and X1 and bisection converges.
func (r Ribbon) paramAt(x float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < 32; i++ {
		mid := (lo + hi) / 2
		if r.xAt(mid) < x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func (r Ribbon) xAt(t float64) float64 {
	u := 1 - t
	return u*u*u*r.X0 + 3*u*u*t*r.XM + 3*u*t*t*r.XM + t*t*t*r.X1
}

// With control points at the endpoint heights, y(t) = y0 + (y1-y0)*(3t²-2t³).
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
