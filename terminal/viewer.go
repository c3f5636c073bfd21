// Package terminal hosts a stage flow diagram in a terminal. The diagram is
// rasterized onto the character grid and driven by mouse and keyboard.
package terminal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"galaxy/canvas"
	"galaxy/core"
	"galaxy/detail"
	"galaxy/diagram"
	"galaxy/interact"
	"galaxy/render"
	"galaxy/widget"
)

var newScreen = tcell.NewScreen

var errQuit = errors.New("quit")

const (
	zoomStep   = 1.25
	panChars   = 4
	panelRatio = 0.4
	helpText   = "q quit  u/r undo/redo  0 reset  tab column  </> move  +/- zoom  arrows pan"
)

// Viewer is a widget container drawing into a tcell screen.
type Viewer struct {
	screen tcell.Screen
	w      *widget.Widget
	raster render.RasterOptions

	buttons  tcell.ButtonMask
	selected int
	panel    []detail.Line
	message  string
}

// New draws the payload on an initialized screen.
func New(screen tcell.Screen, payload *diagram.Payload, style render.LinkStyle, opts ...widget.Option) (*Viewer, error) {
	v := &Viewer{screen: screen, raster: render.DefaultRasterOptions()}
	v.raster.Style = style
	opts = append(opts, widget.WithLinkStyle(style))
	w, err := widget.RenderSankey(v, payload, v.onCellClick, opts...)
	if err != nil {
		return nil, err
	}
	v.w = w
	return v, v.repaint()
}

// Run opens the terminal, shows the diagram and returns when the user quits.
func Run(payload *diagram.Payload, style render.LinkStyle, opts ...widget.Option) error {
	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents | tcell.MouseMotionEvents)

	v, err := New(screen, payload, style, opts...)
	if err != nil {
		return err
	}
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := v.HandleEvent(ev); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// Widget returns the hosted widget.
func (v *Viewer) Widget() *widget.Widget { return v.w }

// Size is the screen minus the status line, in diagram pixels.
func (v *Viewer) Size() (float64, float64) {
	cols, rows := v.screen.Size()
	return float64(cols) * v.raster.ScaleX, float64(max(rows-1, 1)) * v.raster.ScaleY
}

// Present rasterizes the frame and redraws the screen.
func (v *Viewer) Present(f *render.Frame) error {
	grid, err := render.Rasterize(f, v.raster)
	if err != nil {
		return err
	}
	v.screen.Clear()
	cols, rows := grid.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := grid.At(x, y)
			if c.Ch == 0 {
				continue
			}
			v.screen.SetContent(x, y, c.Ch, nil, tcell.StyleDefault.Foreground(tcellColor(c.FG)).Background(tcellColor(c.BG)))
		}
	}
	v.drawPanel()
	v.drawStatus()
	v.screen.Show()
	return nil
}

// repaint presents the last frame again after viewer-only state changed.
func (v *Viewer) repaint() error {
	if v.w == nil || v.w.Frame() == nil {
		return nil
	}
	return v.Present(v.w.Frame())
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (v *Viewer) writeString(x, y int, s string, style tcell.Style) int {
	cols, _ := v.screen.Size()
	for _, ch := range s {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, y, ch, nil, style)
		x += max(canvas.MeasureText(string(ch)), 1)
	}
	return x
}

func (v *Viewer) drawStatus() {
	cols, rows := v.screen.Size()
	y := rows - 1
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < cols; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
	var parts []string
	if v.w != nil {
		parts = append(parts, "order "+v.w.Order().String())
		if label := v.selectedLabel(); label != "" {
			parts = append(parts, "column "+label)
		}
	}
	if v.message != "" {
		parts = append(parts, v.message)
	}
	parts = append(parts, helpText)
	v.writeString(0, y, canvas.Truncate(strings.Join(parts, " | "), cols), style)
}

// drawPanel draws the detail view of the last clicked cell over the bottom of
// the diagram.
func (v *Viewer) drawPanel() {
	if len(v.panel) == 0 {
		return
	}
	cols, rows := v.screen.Size()
	bg := tcell.NewRGBColor(0x26, 0x26, 0x26)

	type row struct {
		text  string
		style tcell.Style
	}
	var wrapped []row
	for _, line := range v.panel {
		style := tcell.StyleDefault.Background(bg).Foreground(tcellColor(line.Color))
		if line.Header {
			style = style.Bold(true)
		}
		body := strings.TrimLeft(line.Text, " ")
		indent := line.Text[:len(line.Text)-len(body)]
		parts := canvas.WrapText(body, max(cols-2-len(indent), 1))
		if len(parts) == 0 {
			parts = []string{""}
		}
		for _, text := range parts {
			wrapped = append(wrapped, row{text: indent + text, style: style})
		}
	}

	height := min(len(wrapped), max(int(float64(rows-1)*panelRatio), 1))
	top := rows - 1 - height
	for i := 0; i < height; i++ {
		y := top + i
		for x := 0; x < cols; x++ {
			v.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
		v.writeString(1, y, wrapped[i].text, wrapped[i].style)
	}
}

func (v *Viewer) onCellClick(sel diagram.Selection) {
	view := detail.Build(sel, v.w.Colors(), v.w.Model().Label)
	lines := detail.Lines(view.ByNotebook)
	lines = append(lines, detail.Lines(view.ByStage)...)
	v.panel = lines
}

// HandleEvent applies one terminal event. It returns errQuit when the user
// asks to leave.
func (v *Viewer) HandleEvent(ev tcell.Event) error {
	v.message = ""
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		w, h := v.Size()
		return v.w.Handle(interact.Resize{Width: w, Height: h})
	case *tcell.EventMouse:
		return v.mouse(ev)
	case *tcell.EventKey:
		return v.key(ev)
	}
	return nil
}

func (v *Viewer) mouse(ev *tcell.EventMouse) error {
	x, y := ev.Position()
	_, rows := v.screen.Size()
	pos := core.Point{X: (float64(x) + 0.5) * v.raster.ScaleX, Y: (float64(y) + 0.5) * v.raster.ScaleY}
	btn := ev.Buttons()
	pressed := btn&tcell.Button1 != 0
	wasPressed := v.buttons&tcell.Button1 != 0
	v.buttons = btn &^ (tcell.WheelUp | tcell.WheelDown)

	var e interact.Event
	switch {
	case btn&tcell.WheelUp != 0:
		e = interact.Zoom{At: pos, Factor: zoomStep}
	case btn&tcell.WheelDown != 0:
		e = interact.Zoom{At: pos, Factor: 1 / zoomStep}
	case y >= rows-1 && !wasPressed:
		e = interact.PointerLeave{}
	case pressed && !wasPressed:
		if len(v.panel) > 0 {
			v.panel = nil
			if err := v.repaint(); err != nil {
				return err
			}
		}
		e = interact.PointerDown{Pos: pos, Shift: ev.Modifiers()&tcell.ModShift != 0}
	case pressed:
		e = interact.PointerMove{Pos: pos}
	case wasPressed:
		e = interact.PointerUp{Pos: pos}
	default:
		e = interact.PointerMove{Pos: pos}
	}

	hadPanel := len(v.panel) > 0
	if err := v.w.Handle(e); err != nil {
		return err
	}
	if !hadPanel && len(v.panel) > 0 {
		return v.repaint()
	}
	return nil
}

func (v *Viewer) key(ev *tcell.EventKey) error {
	cols, rows := v.screen.Size()
	center := core.Point{X: float64(cols) * v.raster.ScaleX / 2, Y: float64(rows-1) * v.raster.ScaleY / 2}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyEscape:
		if len(v.panel) > 0 {
			v.panel = nil
			return v.repaint()
		}
		return errQuit
	case tcell.KeyTab:
		if n := len(v.w.Order()); n > 0 {
			v.selected = (v.selected + 1) % n
		}
		return v.repaint()
	case tcell.KeyLeft:
		return v.w.Handle(interact.Pan{DX: panChars * v.raster.ScaleX})
	case tcell.KeyRight:
		return v.w.Handle(interact.Pan{DX: -panChars * v.raster.ScaleX})
	case tcell.KeyUp:
		return v.w.Handle(interact.Pan{DY: panChars * v.raster.ScaleY})
	case tcell.KeyDown:
		return v.w.Handle(interact.Pan{DY: -panChars * v.raster.ScaleY})
	case tcell.KeyRune:
	default:
		return nil
	}

	switch ev.Rune() {
	case 'q':
		return errQuit
	case 'u':
		return v.history(v.w.Undo, "nothing to undo")
	case 'r':
		return v.history(v.w.Redo, "nothing to redo")
	case '0':
		return v.w.ResetOrder()
	case '+', '=':
		return v.w.Handle(interact.Zoom{At: center, Factor: zoomStep})
	case '-', '_':
		return v.w.Handle(interact.Zoom{At: center, Factor: 1 / zoomStep})
	case '<', ',':
		return v.moveSelected(-1)
	case '>', '.':
		return v.moveSelected(1)
	}
	return nil
}

func (v *Viewer) history(step func() (bool, error), none string) error {
	changed, err := step()
	if err != nil {
		return err
	}
	if !changed {
		v.message = none
		return v.repaint()
	}
	return nil
}

func (v *Viewer) selectedLabel() string {
	order := v.w.Order()
	if v.selected < 0 || v.selected >= len(order) {
		return ""
	}
	return v.w.Model().Label(order[v.selected])
}

// moveSelected drags the label of the selected column by delta slots. It goes
// through the same shift-drag the mouse uses.
func (v *Viewer) moveSelected(delta int) error {
	order := v.w.Order()
	target := v.selected + delta
	if v.selected >= len(order) || target < 0 || target >= len(order) {
		return nil
	}
	g, f := v.w.Geometry(), v.w.Frame()
	col, ok := g.Column(order[v.selected])
	if !ok {
		return nil
	}
	t := f.Transform.Normalize()
	from := t.Apply(col.LabelAnchor)
	to := core.Point{X: from.X + float64(delta)*g.Spacing*t.K, Y: from.Y}

	for _, e := range []interact.Event{
		interact.PointerDown{Pos: from, Shift: true},
		interact.PointerMove{Pos: to},
		interact.PointerUp{Pos: to},
	} {
		if err := v.w.Handle(e); err != nil {
			return err
		}
	}
	if !v.w.Order().Equal(order) {
		v.selected = target
		return v.repaint()
	}
	return nil
}
