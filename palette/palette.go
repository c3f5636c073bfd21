// Package palette assigns display colors to stages.
//
// A ColorAssignment belongs to one analysis session. It is built from the ordered
// stage list of that session and never shared between sessions, so a new payload
// with fewer or different stages cannot inherit colors from an older one.
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"galaxy/diagram"
)

// Named palettes.
var (
	Set2 = mustParse(
		"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3",
		"#a6d854", "#ffd92f", "#e5c494", "#b3b3b3",
	)
	Tableau10 = mustParse(
		"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	)
)

// Neutral is the color of unclassified cells and of stages outside the assignment.
var Neutral = mustParse("#cccccc")[0]

// Background is the canvas color raster outputs blend against.
var Background = mustParse("#ffffff")[0]

// Names lists the palettes ByName accepts.
func Names() []string {
	return []string{"set2", "tableau10"}
}

// ByName returns a named palette.
func ByName(name string) ([]colorful.Color, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "set2":
		return Set2, nil
	case "tableau10", "tableau":
		return Tableau10, nil
	default:
		return nil, fmt.Errorf("unknown palette: %s", name)
	}
}

// ColorAssignment maps stages to palette slots in first-seen order.
type ColorAssignment struct {
	palette []colorful.Color
	slots   map[diagram.Stage]int
	stages  []diagram.Stage
}

// NewColorAssignment assigns slot i mod len(palette) to the i-th stage.
// A nil or empty palette falls back to Set2.
func NewColorAssignment(stages []diagram.Stage, pal []colorful.Color) *ColorAssignment {
	if len(pal) == 0 {
		pal = Set2
	}
	a := &ColorAssignment{palette: pal}
	a.Reset(stages)
	return a
}

// Reset clears every previous assignment and assigns the given stages from scratch.
// Unclassified and duplicate entries are skipped.
func (a *ColorAssignment) Reset(stages []diagram.Stage) {
	a.slots = make(map[diagram.Stage]int, len(stages))
	a.stages = a.stages[:0]
	for _, s := range stages {
		if !s.Known() {
			continue
		}
		if _, ok := a.slots[s]; ok {
			continue
		}
		a.slots[s] = len(a.stages) % len(a.palette)
		a.stages = append(a.stages, s)
	}
}

// Stages returns the assigned stages in assignment order.
func (a *ColorAssignment) Stages() []diagram.Stage {
	out := make([]diagram.Stage, len(a.stages))
	copy(out, a.stages)
	return out
}

// Slot returns the palette slot of a stage.
func (a *ColorAssignment) Slot(s diagram.Stage) (int, bool) {
	slot, ok := a.slots[s]
	return slot, ok
}

// ColorFor returns the stage's color, or Neutral for unclassified or unassigned stages.
func (a *ColorAssignment) ColorFor(s diagram.Stage) colorful.Color {
	if a == nil {
		return Neutral
	}
	slot, ok := a.slots[s]
	if !ok {
		return Neutral
	}
	return a.palette[slot]
}

// Hex returns the stage's color as #rrggbb.
func (a *ColorAssignment) Hex(s diagram.Stage) string {
	return a.ColorFor(s).Hex()
}

// Blend returns c drawn with the given opacity over bg.
func Blend(c, bg colorful.Color, opacity float64) colorful.Color {
	if opacity <= 0 {
		return bg
	}
	if opacity >= 1 {
		return c
	}
	return bg.BlendRgb(c, opacity).Clamped()
}

// Contrast returns black or white, whichever reads better on c.
func Contrast(c colorful.Color) colorful.Color {
	l, _, _ := c.Lab()
	if l > 0.6 {
		return colorful.Color{}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

func mustParse(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("palette: bad color %q: %v", h, err))
		}
		out[i] = c
	}
	return out
}
