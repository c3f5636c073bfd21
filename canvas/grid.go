// Package canvas is a colored character grid used by the text and terminal outputs.
package canvas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// continuation marks the second column of a wide rune.
const continuation rune = -1

// Cell is one character position of the grid.
type Cell struct {
	Ch rune
	FG colorful.Color
	BG colorful.Color
	// Styled is false for cells nothing has drawn on.
	Styled bool
}

// Grid is a fixed size matrix of colored characters.
//
// Grid is NOT thread-safe. Origin (0,0) is top-left, all coordinates are in
// character cells.
type Grid struct {
	width  int
	height int
	cells  []Cell
	bg     colorful.Color
}

// NewGrid creates a grid filled with spaces on the given background.
func NewGrid(width, height int, bg colorful.Color) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	g := &Grid{width: width, height: height, cells: make([]Cell, width*height), bg: bg}
	g.Clear()
	return g, nil
}

// Size returns the width and height of the grid.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// Background returns the color the grid was cleared to.
func (g *Grid) Background() colorful.Color {
	return g.bg
}

// Clear resets every cell to a blank space.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{Ch: ' ', BG: g.bg}
	}
}

func (g *Grid) inside(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the cell at (x, y). Out of bounds positions read as blank.
func (g *Grid) At(x, y int) Cell {
	if !g.inside(x, y) {
		return Cell{Ch: ' ', BG: g.bg}
	}
	c := g.cells[y*g.width+x]
	if c.Ch == continuation {
		c.Ch = 0
	}
	return c
}

// Set places a character with a foreground color, keeping the cell background.
func (g *Grid) Set(x, y int, ch rune, fg colorful.Color) error {
	if !g.inside(x, y) {
		return ErrOutOfBounds
	}
	c := &g.cells[y*g.width+x]
	c.Ch = ch
	c.FG = fg
	c.Styled = true
	return nil
}

// Fill paints the background of a cell and clears its character.
func (g *Grid) Fill(x, y int, bg colorful.Color) {
	if !g.inside(x, y) {
		return
	}
	g.cells[y*g.width+x] = Cell{Ch: ' ', BG: bg, Styled: true}
}

// FillRect fills the half-open cell range [x0,x1) x [y0,y1), clipped to the grid.
func (g *Grid) FillRect(x0, y0, x1, y1 int, bg colorful.Color) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, g.width), min(y1, g.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.Fill(x, y, bg)
		}
	}
}

// Blend mixes c into the background of a cell at the given opacity.
func (g *Grid) Blend(x, y int, c colorful.Color, opacity float64) {
	if !g.inside(x, y) {
		return
	}
	cell := &g.cells[y*g.width+x]
	cell.BG = cell.BG.BlendRgb(c, opacity).Clamped()
	cell.Styled = true
}

// DrawText writes text starting at (x, y) and returns the number of columns used.
// Wide runes take two columns. Text is clipped at the right edge; a wide rune that
// does not fit is dropped.
func (g *Grid) DrawText(x, y int, text string, fg colorful.Color) int {
	if y < 0 || y >= g.height {
		return 0
	}
	col := x
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > g.width {
			break
		}
		if col >= 0 {
			g.Set(col, y, r, fg)
			if w == 2 {
				g.Set(col+1, y, continuation, fg)
			}
		}
		col += w
	}
	return col - x
}

// String returns the characters of the grid without colors, one line per row.
// Trailing spaces are trimmed.
func (g *Grid) String() string {
	return g.text(func(c Cell) rune { return c.Ch })
}

// Shaded is like String but draws painted blank cells with block characters:
// a full block where the color stands out from the background, a light shade
// where it was only blended in.
func (g *Grid) Shaded() string {
	return g.text(func(c Cell) rune {
		if c.Ch != ' ' || !c.Styled {
			return c.Ch
		}
		switch d := c.BG.DistanceLab(g.bg); {
		case d >= ShadeSolid:
			return '█'
		case d > 0.02:
			return '░'
		}
		return ' '
	})
}

// ShadeSolid is the Lab distance from the background above which Shaded draws a
// full block.
const ShadeSolid = 0.3

func (g *Grid) text(glyph func(Cell) rune) string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		var line strings.Builder
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			if c.Ch == continuation {
				continue
			}
			line.WriteRune(glyph(c))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		if y < g.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ANSI returns the grid with 24-bit color escape sequences. Colors are only
// re-emitted when they change along a row and every row ends with a reset.
func (g *Grid) ANSI() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		var curFG, curBG string
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			if c.Ch == continuation {
				continue
			}
			if bg := sgr(48, c.BG); bg != curBG {
				sb.WriteString(bg)
				curBG = bg
			}
			if fg := sgr(38, c.FG); fg != curFG && c.Ch != ' ' {
				sb.WriteString(fg)
				curFG = fg
			}
			sb.WriteRune(c.Ch)
		}
		sb.WriteString(ColorReset)
		if y < g.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ColorReset restores the terminal's default colors.
const ColorReset = "\033[0m"

func sgr(layer int, c colorful.Color) string {
	r, gr, b := c.Clamped().RGB255()
	return fmt.Sprintf("\033[%d;2;%d;%d;%dm", layer, r, gr, b)
}
