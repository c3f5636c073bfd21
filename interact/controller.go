// Package interact is the input state machine of the flow widget: hover tooltips,
// click selection, shift-drag column reordering, zoom and pan.
package interact

import (
	"fmt"

	"galaxy/core"
	"galaxy/diagram"
	"galaxy/layout"
	"galaxy/render"
)

// ClickTolerance is how far, in screen pixels, a press may travel and still count
// as a click.
const ClickTolerance = 3

// State represents the current interaction state
type State int

const (
	Idle     State = iota // Hover and click handling
	Dragging              // A column label follows the pointer
)

// String returns the state name for display
func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Dragging:
		return "DRAGGING"
	default:
		return "UNKNOWN"
	}
}

// Surface is what the controller inspects to resolve events.
type Surface interface {
	Geometry() *layout.Geometry
	Model() *diagram.Model
}

// Move asks the owner to place a column at a new display slot.
type Move struct {
	Col  int
	Slot int
}

// Effect tells the owner what an event changed.
type Effect struct {
	// Redraw means the frame changed but the layout did not.
	Redraw bool
	// Relayout means links and geometry must be recomputed before drawing.
	Relayout bool
	// Move is set when a drag ended on a different slot.
	Move *Move
	// Selection is set when a cell was clicked.
	Selection *diagram.Selection
}

type press struct {
	at   core.Point
	cell diagram.Cell
}

type drag struct {
	col    int
	startX float64 // pointer x in diagram space when the drag began
	dx     float64
}

// Controller owns the transient interaction state of one widget.
// It is not safe for concurrent use.
type Controller struct {
	surface   Surface
	state     State
	drag      drag
	press     *press
	tooltip   render.Tooltip
	transform render.Transform
}

// NewController creates an idle controller over a surface.
func NewController(s Surface) *Controller {
	return &Controller{surface: s, transform: render.Identity}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Transform returns the current pan/zoom transform.
func (c *Controller) Transform() render.Transform {
	return c.transform
}

// Tooltip returns the hover overlay.
func (c *Controller) Tooltip() render.Tooltip {
	return c.tooltip
}

// Drag returns the live drag for the renderer.
func (c *Controller) Drag() render.Drag {
	if c.state != Dragging {
		return render.Drag{}
	}
	return render.Drag{Active: true, Col: c.drag.col, DX: c.drag.dx}
}

// HideTooltip hides the overlay and reports whether it was visible.
func (c *Controller) HideTooltip() bool {
	visible := c.tooltip.Visible
	c.tooltip = render.Tooltip{}
	return visible
}

// Reset drops any drag, press, tooltip and view transform.
func (c *Controller) Reset() {
	c.state = Idle
	c.drag = drag{}
	c.press = nil
	c.tooltip = render.Tooltip{}
	c.transform = render.Identity
}

// Handle applies an event and reports what the owner must redo.
func (c *Controller) Handle(ev Event) Effect {
	g := c.surface.Geometry()
	if g == nil {
		return Effect{}
	}

	switch e := ev.(type) {
	case PointerDown:
		return c.pointerDown(g, e)
	case PointerMove:
		return c.pointerMove(g, e)
	case PointerUp:
		return c.pointerUp(g, e)
	case PointerLeave:
		c.press = nil
		redraw := c.HideTooltip()
		if c.state == Dragging {
			c.state = Idle
			c.drag = drag{}
			redraw = true
		}
		return Effect{Redraw: redraw}
	case Resize:
		c.HideTooltip()
		c.press = nil
		return Effect{Relayout: true, Redraw: true}
	case Zoom:
		c.HideTooltip()
		c.transform = c.transform.ZoomAt(e.At, e.Factor)
		return Effect{Redraw: true}
	case Pan:
		c.HideTooltip()
		c.transform = c.transform.Pan(e.DX, e.DY)
		return Effect{Redraw: true}
	}
	return Effect{}
}

func (c *Controller) pointerDown(g *layout.Geometry, e PointerDown) Effect {
	if c.state != Idle {
		return Effect{}
	}
	p := c.transform.Invert(e.Pos)

	if col, ok := g.LabelAt(p); ok {
		if !e.Shift {
			return Effect{}
		}
		c.state = Dragging
		c.drag = drag{col: col.Col, startX: p.X}
		c.press = nil
		c.HideTooltip()
		return Effect{Redraw: true}
	}

	if cell, ok := g.CellAt(p); ok {
		c.press = &press{at: e.Pos, cell: cell.Cell}
	}
	return Effect{}
}

func (c *Controller) pointerMove(g *layout.Geometry, e PointerMove) Effect {
	p := c.transform.Invert(e.Pos)

	if c.state == Dragging {
		c.drag.dx = p.X - c.drag.startX
		return Effect{Redraw: true}
	}

	cell, ok := g.CellAt(p)
	if !ok {
		return Effect{Redraw: c.HideTooltip()}
	}
	c.tooltip = render.Tooltip{
		Visible: true,
		At:      e.Pos,
		Lines:   TooltipLines(cell.Cell),
	}
	return Effect{Redraw: true}
}

func (c *Controller) pointerUp(g *layout.Geometry, e PointerUp) Effect {
	if c.state == Dragging {
		d := c.drag
		c.state = Idle
		c.drag = drag{}

		p := c.transform.Invert(e.Pos)
		eff := Effect{Redraw: true}
		// the column's current x, since a resize may have moved it mid-drag
		current, found := g.Column(d.col)
		if !found {
			return eff
		}
		slot, ok := g.SlotForX(current.X + p.X - d.startX)
		if ok && slot != current.Slot {
			eff.Move = &Move{Col: d.col, Slot: slot}
			eff.Relayout = true
		}
		return eff
	}

	pr := c.press
	c.press = nil
	if pr == nil || pr.at.Distance(e.Pos) > ClickTolerance {
		return Effect{}
	}
	cell, ok := g.CellAt(c.transform.Invert(e.Pos))
	if !ok || cell.Cell.Row != pr.cell.Row || cell.Cell.Col != pr.cell.Col {
		return Effect{}
	}
	sel, err := c.surface.Model().Select(pr.cell.Row, pr.cell.Col)
	if err != nil {
		return Effect{}
	}
	return Effect{Selection: &sel}
}

// TooltipLines describes a cell for the hover overlay. Numbers are 1-based.
func TooltipLines(cell diagram.Cell) []string {
	return []string{
		fmt.Sprintf("Stage: %s", cell.Stage.Label()),
		fmt.Sprintf("Notebook %d, cell %d", cell.Col+1, cell.Row+1),
	}
}
