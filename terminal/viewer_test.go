package terminal

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"galaxy/diagram"
	"galaxy/render"
)

func newTestViewer(t *testing.T, cols, rows int) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)

	payload := diagram.FromLabels(
		[]string{"A", "A", "B"},
		[]string{"A", "B"},
		[]string{"B"},
	)
	v, err := New(s, payload, render.LinksAbove)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v, s
}

func screenText(s tcell.SimulationScreen) string {
	cells, width, height := s.GetContents()
	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if r := cells[y*width+x].Runes; len(r) > 0 {
				sb.WriteRune(r[0])
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewerFirstDraw(t *testing.T) {
	v, s := newTestViewer(t, 97, 30)

	text := screenText(s)
	for _, want := range []string{"Notebook 1", "Notebook 3", "order 0,1,2", "column Notebook 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("screen missing %q:\n%s", want, text)
		}
	}
	if w, h := v.Size(); w != 485 || h != 29*6 {
		t.Errorf("Size() = %v x %v, want 485 x 174", w, h)
	}
}

func TestViewerKeyboardReorder(t *testing.T) {
	v, s := newTestViewer(t, 97, 30)
	order := func() string { return v.Widget().Order().String() }

	steps := []struct {
		name string
		ev   tcell.Event
		want string
	}{
		{"select second column", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "0,1,2"},
		{"move it left", key('<'), "1,0,2"},
		{"move past the edge", key('<'), "1,0,2"},
		{"undo", key('u'), "0,1,2"},
		{"redo", key('r'), "1,0,2"},
		{"reset", key('0'), "0,1,2"},
	}
	for _, step := range steps {
		if err := v.HandleEvent(step.ev); err != nil {
			t.Fatalf("%s: HandleEvent failed: %v", step.name, err)
		}
		if got := order(); got != step.want {
			t.Fatalf("%s: order = %s, want %s", step.name, got, step.want)
		}
	}

	if err := v.HandleEvent(key('r')); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(screenText(s), "nothing to redo") {
		t.Error("redo with an empty redo stack should say so")
	}
}

func TestViewerClickOpensPanel(t *testing.T) {
	v, s := newTestViewer(t, 97, 30)

	// character (8, 7) lies inside the first cell of the first column
	for _, ev := range []tcell.Event{
		tcell.NewEventMouse(8, 7, tcell.Button1, tcell.ModNone),
		tcell.NewEventMouse(8, 7, tcell.ButtonNone, tcell.ModNone),
	} {
		if err := v.HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent failed: %v", err)
		}
	}
	if len(v.panel) == 0 {
		t.Fatal("click should open the detail panel")
	}
	if text := screenText(s); !strings.Contains(text, "In [nb0-c0]") {
		t.Errorf("panel not drawn:\n%s", text)
	}

	if err := v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); err != nil {
		t.Fatalf("first escape should close the panel, got %v", err)
	}
	if len(v.panel) != 0 {
		t.Error("panel still open")
	}
	err := v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if !errors.Is(err, errQuit) {
		t.Errorf("second escape should quit, got %v", err)
	}
}

func TestViewerPlainDragDoesNotReorder(t *testing.T) {
	v, _ := newTestViewer(t, 97, 30)

	// label of the third column sits around character (88, 3)
	for _, ev := range []tcell.Event{
		tcell.NewEventMouse(88, 3, tcell.Button1, tcell.ModNone),
		tcell.NewEventMouse(10, 3, tcell.Button1, tcell.ModNone),
		tcell.NewEventMouse(10, 3, tcell.ButtonNone, tcell.ModNone),
	} {
		if err := v.HandleEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	if got := v.Widget().Order().String(); got != "0,1,2" {
		t.Errorf("plain drag reordered columns: %s", got)
	}

	for _, ev := range []tcell.Event{
		tcell.NewEventMouse(88, 3, tcell.Button1, tcell.ModShift),
		tcell.NewEventMouse(10, 3, tcell.Button1, tcell.ModShift),
		tcell.NewEventMouse(10, 3, tcell.ButtonNone, tcell.ModShift),
	} {
		if err := v.HandleEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	if got := v.Widget().Order().String(); got != "2,0,1" {
		t.Errorf("shift drag order = %s, want 2,0,1", got)
	}
}

func TestViewerResizeAndQuit(t *testing.T) {
	v, s := newTestViewer(t, 97, 30)

	s.SetSize(120, 30)
	if err := v.HandleEvent(tcell.NewEventResize(120, 30)); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if got := v.Widget().Frame().Viewport.Width; got != 600 {
		t.Errorf("viewport width = %v, want 600", got)
	}

	if err := v.HandleEvent(key('+')); err != nil {
		t.Fatal(err)
	}
	if k := v.Widget().Frame().Transform.K; k != zoomStep {
		t.Errorf("zoom = %v, want %v", k, zoomStep)
	}

	if err := v.HandleEvent(key('q')); !errors.Is(err, errQuit) {
		t.Errorf("q should quit, got %v", err)
	}
}
