// Package widget is the entry point of the stage flow diagram. A Widget owns the
// column order, the color assignment of the current analysis session and the
// relayout and redraw routine; hosts hand it a Container and feed it events.
package widget

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"galaxy/core"
	"galaxy/diagram"
	"galaxy/flow"
	"galaxy/interact"
	"galaxy/layout"
	"galaxy/palette"
	"galaxy/render"
)

// Container is the surface a widget draws into.
type Container interface {
	// Size returns the available width and height in screen pixels.
	Size() (width, height float64)
	// Present shows a finished frame.
	Present(f *render.Frame) error
}

// ErrNoContainer is returned when RenderSankey is called without a container.
var ErrNoContainer = errors.New("widget: container is nil")

// Option configures a widget.
type Option func(*Widget)

// WithPalette selects the stage palette.
func WithPalette(p []colorful.Color) Option {
	return func(w *Widget) { w.palette = p }
}

// WithLinkStyle draws ribbons above or below the cells.
func WithLinkStyle(s render.LinkStyle) Option {
	return func(w *Widget) { w.renderer.Style = s }
}

// WithLayoutOptions overrides the diagram dimensions.
func WithLayoutOptions(o layout.Options) Option {
	return func(w *Widget) { w.layoutOpts = o }
}

// WithOrder sets the initial column order. It is validated against the payload.
func WithOrder(order diagram.ColumnOrder) Option {
	return func(w *Widget) { w.initialOrder = order.Clone() }
}

// WithHistorySize bounds the reorder undo history.
func WithHistorySize(n int) Option {
	return func(w *Widget) { w.historySize = n }
}

// Widget is one rendered flow diagram. It is not safe for concurrent use.
type Widget struct {
	container   Container
	onCellClick func(diagram.Selection)

	palette      []colorful.Color
	layoutOpts   layout.Options
	renderer     *render.Renderer
	historySize  int
	initialOrder diagram.ColumnOrder

	model    *diagram.Model
	segments [][]diagram.Segment
	colors   *palette.ColorAssignment
	order    diagram.ColumnOrder
	history  *interact.History
	ctrl     *interact.Controller

	links    []diagram.Link
	geometry *layout.Geometry
	frame    *render.Frame
}

// RenderSankey validates the payload, builds the diagram and performs the first
// draw. onCellClick may be nil.
func RenderSankey(c Container, payload *diagram.Payload, onCellClick func(diagram.Selection), opts ...Option) (*Widget, error) {
	if c == nil {
		return nil, ErrNoContainer
	}
	w := &Widget{
		container:   c,
		onCellClick: onCellClick,
		palette:     palette.Set2,
		layoutOpts:  layout.DefaultOptions(),
		renderer:    render.NewRenderer(),
		historySize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.ctrl = interact.NewController(w)

	if err := w.load(payload, w.initialOrder); err != nil {
		return nil, err
	}
	if err := w.Draw(); err != nil {
		return nil, err
	}
	return w, nil
}

// Load starts a new analysis session: model, segments, colors, order and history
// are rebuilt from scratch and the widget redraws.
func (w *Widget) Load(payload *diagram.Payload) error {
	if err := w.load(payload, nil); err != nil {
		return err
	}
	return w.Draw()
}

func (w *Widget) load(payload *diagram.Payload, order diagram.ColumnOrder) error {
	model, err := diagram.NewModel(payload)
	if err != nil {
		return err
	}
	if order == nil {
		order = diagram.NewColumnOrder(model.ColumnCount())
	}
	if err := order.Validate(model.ColumnCount()); err != nil {
		return fmt.Errorf("widget: initial order: %w", err)
	}

	w.model = model
	w.segments = flow.BuildAllSegments(model)
	w.colors = palette.NewColorAssignment(model.Stages(), w.palette)
	w.order = order
	w.history = interact.NewHistory(w.historySize)
	w.history.Save(order)
	w.ctrl.Reset()
	w.geometry = nil
	return nil
}

// relayout recomputes links and geometry for the current order and container width.
func (w *Widget) relayout() error {
	width, _ := w.container.Size()
	w.links = flow.BuildLinks(w.order, w.segments)
	g, err := layout.Compute(layout.Input{
		Model:          w.model,
		Segments:       w.segments,
		Links:          w.links,
		Order:          w.order,
		ContainerWidth: width,
	}, w.layoutOpts)
	if err != nil {
		return err
	}
	w.geometry = g
	return nil
}

// Draw relayouts and presents a fresh frame. The tooltip is hidden.
func (w *Widget) Draw() error {
	w.ctrl.HideTooltip()
	if err := w.relayout(); err != nil {
		return err
	}
	return w.present()
}

func (w *Widget) present() error {
	width, height := w.container.Size()
	w.frame = &render.Frame{
		Geometry:  w.geometry,
		Colors:    w.colors,
		Transform: w.ctrl.Transform(),
		Drag:      w.ctrl.Drag(),
		Tooltip:   w.ctrl.Tooltip(),
		Viewport:  core.Rect{Width: width, Height: height},
	}
	return w.container.Present(w.frame)
}

// Handle feeds an input event to the widget.
func (w *Widget) Handle(ev interact.Event) error {
	eff := w.ctrl.Handle(ev)

	if eff.Move != nil {
		if w.order.Move(eff.Move.Col, eff.Move.Slot) {
			w.history.Save(w.order)
		}
	}
	if eff.Selection != nil && w.onCellClick != nil {
		w.onCellClick(*eff.Selection)
	}

	switch {
	case eff.Relayout:
		return w.Draw()
	case eff.Redraw:
		return w.present()
	}
	return nil
}

// Undo reverts the last reorder. It reports whether anything changed.
func (w *Widget) Undo() (bool, error) {
	order, ok := w.history.Undo()
	if !ok {
		return false, nil
	}
	w.order = order
	return true, w.Draw()
}

// Redo reapplies an undone reorder.
func (w *Widget) Redo() (bool, error) {
	order, ok := w.history.Redo()
	if !ok {
		return false, nil
	}
	w.order = order
	return true, w.Draw()
}

// ResetOrder restores the payload order of the columns.
func (w *Widget) ResetOrder() error {
	w.order = diagram.NewColumnOrder(w.model.ColumnCount())
	w.history.Save(w.order)
	return w.Draw()
}

// Select returns the selection a click on the given cell would produce.
func (w *Widget) Select(row, col int) (diagram.Selection, error) {
	return w.model.Select(row, col)
}

// Geometry returns the layout of the last draw.
func (w *Widget) Geometry() *layout.Geometry { return w.geometry }

// Model returns the model of the current session.
func (w *Widget) Model() *diagram.Model { return w.model }

// Order returns a copy of the current column order.
func (w *Widget) Order() diagram.ColumnOrder { return w.order.Clone() }

// Links returns the links of the last draw.
func (w *Widget) Links() []diagram.Link { return w.links }

// Segments returns the segments of every column, indexed by raw column.
func (w *Widget) Segments() [][]diagram.Segment { return w.segments }

// Colors returns the color assignment of the current session.
func (w *Widget) Colors() *palette.ColorAssignment { return w.colors }

// Frame returns the last presented frame.
func (w *Widget) Frame() *render.Frame { return w.frame }

// Renderer returns the scene renderer configured for this widget.
func (w *Widget) Renderer() *render.Renderer { return w.renderer }

// State returns the interaction state.
func (w *Widget) State() interact.State { return w.ctrl.State() }
