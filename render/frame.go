// Package render turns a computed layout into a scene graph and serializes it as
// SVG or rasterizes it onto a character grid.
package render

import (
	"galaxy/core"
	"galaxy/layout"
	"galaxy/palette"
)

// Drag is the live state of a column label being dragged.
type Drag struct {
	Active bool    `json:"active"`
	Col    int     `json:"col"`
	DX     float64 `json:"dx"`
}

// Tooltip is the hover overlay. At is in screen coordinates.
type Tooltip struct {
	Visible bool       `json:"visible"`
	At      core.Point `json:"at"`
	Lines   []string   `json:"lines,omitempty"`
}

// Frame is everything a container needs to present one draw.
type Frame struct {
	Geometry  *layout.Geometry         `json:"geometry"`
	Colors    *palette.ColorAssignment `json:"-"`
	Transform Transform                `json:"transform"`
	Drag      Drag                     `json:"drag"`
	Tooltip   Tooltip                  `json:"tooltip"`
	// Viewport is the container size in screen pixels.
	Viewport core.Rect `json:"viewport"`
}

// LabelOffset returns the horizontal drag offset applied to a column label.
func (f *Frame) LabelOffset(col int) float64 {
	if f.Drag.Active && f.Drag.Col == col {
		return f.Drag.DX
	}
	return 0
}
