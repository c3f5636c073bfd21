package widget

import (
	"errors"
	"testing"

	"galaxy/core"
	"galaxy/diagram"
	"galaxy/interact"
	"galaxy/palette"
	"galaxy/render"
)

type fakeContainer struct {
	width, height float64
	frames        []*render.Frame
	err           error
}

func (c *fakeContainer) Size() (float64, float64) { return c.width, c.height }

func (c *fakeContainer) Present(f *render.Frame) error {
	c.frames = append(c.frames, f)
	return c.err
}

func (c *fakeContainer) last() *render.Frame { return c.frames[len(c.frames)-1] }

func threeNotebooks() *diagram.Payload {
	return diagram.FromLabels(
		[]string{"A", "A", "B"},
		[]string{"A", "B"},
		[]string{"B"},
	)
}

func pt(x, y float64) core.Point { return core.Point{X: x, Y: y} }

func TestRenderSankeyFirstDraw(t *testing.T) {
	c := &fakeContainer{width: 485, height: 300}
	w, err := RenderSankey(c, threeNotebooks(), nil)
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	if len(c.frames) != 1 {
		t.Fatalf("expected one presented frame, got %d", len(c.frames))
	}
	f := c.last()
	if f.Geometry.Spacing != 200 {
		t.Errorf("spacing = %v, want 200", f.Geometry.Spacing)
	}
	if f.Viewport.Width != 485 || f.Viewport.Height != 300 {
		t.Errorf("viewport = %+v", f.Viewport)
	}
	if len(w.Links()) != 3 {
		t.Errorf("links = %d, want 3", len(w.Links()))
	}
	if !w.Order().Equal(diagram.ColumnOrder{0, 1, 2}) {
		t.Errorf("initial order = %v", w.Order())
	}
}

func TestRenderSankeyFailsFast(t *testing.T) {
	c := &fakeContainer{width: 400}

	_, err := RenderSankey(c, &diagram.Payload{}, nil)
	if !errors.Is(err, diagram.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
	if len(c.frames) != 0 {
		t.Error("nothing should be presented for a malformed payload")
	}

	if _, err := RenderSankey(nil, threeNotebooks(), nil); !errors.Is(err, ErrNoContainer) {
		t.Errorf("expected ErrNoContainer, got %v", err)
	}

	if _, err := RenderSankey(c, threeNotebooks(), nil, WithOrder(diagram.ColumnOrder{0, 0, 1})); err == nil {
		t.Error("an invalid initial order should be rejected")
	}

	c.err = errors.New("gone")
	if _, err := RenderSankey(c, threeNotebooks(), nil); err == nil {
		t.Error("present errors should surface")
	}
}

func TestShiftDragReorderAndUndo(t *testing.T) {
	c := &fakeContainer{width: 485}
	w, err := RenderSankey(c, threeNotebooks(), nil)
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}

	steps := []interact.Event{
		interact.PointerDown{Pos: pt(42, 15), Shift: true},
		interact.PointerMove{Pos: pt(440, 15)},
		interact.PointerUp{Pos: pt(440, 15)},
	}
	for _, ev := range steps {
		if err := w.Handle(ev); err != nil {
			t.Fatalf("Handle(%T) failed: %v", ev, err)
		}
	}

	if !w.Order().Equal(diagram.ColumnOrder{1, 2, 0}) {
		t.Fatalf("order after drag = %v, want 1,2,0", w.Order())
	}
	x, _ := w.Geometry().ColumnX(0)
	if x != 440 {
		t.Errorf("column 0 x = %v, want 440", x)
	}
	// 1 and 2 are now adjacent: only stage B links them
	if n := len(w.Links()); n != 2 {
		t.Errorf("links after reorder = %d, want 2", n)
	}
	if w.Frame().Drag.Active {
		t.Error("the frame after a drop should carry no drag")
	}

	if ok, err := w.Undo(); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if !w.Order().Equal(diagram.ColumnOrder{0, 1, 2}) {
		t.Errorf("order after undo = %v", w.Order())
	}
	if ok, _ := w.Redo(); !ok || !w.Order().Equal(diagram.ColumnOrder{1, 2, 0}) {
		t.Errorf("order after redo = %v", w.Order())
	}
	if err := w.ResetOrder(); err != nil {
		t.Fatalf("ResetOrder failed: %v", err)
	}
	if !w.Order().Equal(diagram.ColumnOrder{0, 1, 2}) {
		t.Errorf("order after reset = %v", w.Order())
	}
	if ok, _ := w.Undo(); !ok || !w.Order().Equal(diagram.ColumnOrder{1, 2, 0}) {
		t.Errorf("reset should be undoable, order = %v", w.Order())
	}
}

func TestClickCallsBack(t *testing.T) {
	c := &fakeContainer{width: 485}
	var got []diagram.Selection
	w, err := RenderSankey(c, threeNotebooks(), func(s diagram.Selection) {
		got = append(got, s)
	})
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}

	w.Handle(interact.PointerDown{Pos: pt(242, 41)})
	w.Handle(interact.PointerUp{Pos: pt(242, 41)})

	if len(got) != 1 {
		t.Fatalf("expected one selection, got %d", len(got))
	}
	if n := len(got[0].NotebookCells); n != 2 {
		t.Errorf("notebook cells = %d, want 2", n)
	}
	if n := len(got[0].StageCells); n != 3 {
		t.Errorf("stage A cells = %d, want 3", n)
	}
}

func TestResizeKeepsOrderAndIdentities(t *testing.T) {
	c := &fakeContainer{width: 485}
	w, err := RenderSankey(c, threeNotebooks(), nil, WithOrder(diagram.ColumnOrder{2, 0, 1}))
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	before := w.Links()

	w.Handle(interact.PointerMove{Pos: pt(42, 41)})
	if !c.last().Tooltip.Visible {
		t.Fatal("hover should present a tooltip")
	}

	c.width = 885
	if err := w.Handle(interact.Resize{Width: 885, Height: 200}); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	f := c.last()
	if f.Tooltip.Visible {
		t.Error("resize should hide the tooltip")
	}
	if f.Geometry.Spacing != 400 {
		t.Errorf("spacing after resize = %v, want 400", f.Geometry.Spacing)
	}
	if !w.Order().Equal(diagram.ColumnOrder{2, 0, 1}) {
		t.Errorf("order changed on resize: %v", w.Order())
	}
	after := w.Links()
	if len(after) != len(before) {
		t.Fatalf("link count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("link %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestLoadStartsNewSession(t *testing.T) {
	c := &fakeContainer{width: 485}
	w, err := RenderSankey(c, threeNotebooks(), nil, WithPalette(palette.Tableau10))
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	w.Handle(interact.PointerDown{Pos: pt(42, 15), Shift: true})
	w.Handle(interact.PointerUp{Pos: pt(440, 15)})
	oldColors := w.Colors()

	if err := w.Load(diagram.FromLabels([]string{"X", "B"})); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := w.Colors().ColorFor("X"); got != palette.Tableau10[0] {
		t.Errorf("first stage of the new session = %v, want first palette slot", got.Hex())
	}
	if got := w.Colors().ColorFor("A"); got != palette.Neutral {
		t.Errorf("stage from the old session kept color %v", got.Hex())
	}
	if oldColors.ColorFor("A") != palette.Tableau10[0] {
		t.Error("the previous session's assignment must not be mutated")
	}
	if !w.Order().Equal(diagram.ColumnOrder{0}) {
		t.Errorf("order = %v, want a fresh order", w.Order())
	}
	if ok, _ := w.Undo(); ok {
		t.Error("history should start empty for a new session")
	}

	if err := w.Load(&diagram.Payload{}); err == nil {
		t.Error("Load should reject a malformed payload")
	}
	if w.Model().ColumnCount() != 1 {
		t.Error("a failed Load must keep the current session")
	}
}

func TestEmptyPayload(t *testing.T) {
	c := &fakeContainer{width: 0}
	w, err := RenderSankey(c, &diagram.Payload{Notebooks: []diagram.Notebook{}}, nil)
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	if len(w.Geometry().Columns) != 0 {
		t.Error("no notebooks, no columns")
	}
	if err := w.Handle(interact.PointerMove{Pos: pt(10, 10)}); err != nil {
		t.Errorf("events on an empty diagram failed: %v", err)
	}
}

func TestHeadlessContainer(t *testing.T) {
	h := NewHeadless(485, -1)
	var presented int
	h.OnPresent = func(*render.Frame) error {
		presented++
		return nil
	}

	w, err := RenderSankey(h, threeNotebooks(), nil)
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	if presented != 1 || h.Last() != w.Frame() {
		t.Fatalf("presented %d frames, last frame mismatch %v", presented, h.Last() != w.Frame())
	}
	if _, height := h.Size(); height != 0 {
		t.Errorf("negative height should clamp to 0, got %v", height)
	}

	h.Resize(900, 400)
	if err := w.Handle(interact.Resize{Width: 900, Height: 400}); err != nil {
		t.Fatalf("Handle(Resize) failed: %v", err)
	}
	if presented != 2 || h.Last().Viewport.Width != 900 {
		t.Errorf("resize should present a frame at the new width, got %d frames width %v", presented, h.Last().Viewport.Width)
	}
}

func TestResizeDuringDragDropsWhereLabelIsDrawn(t *testing.T) {
	c := &fakeContainer{width: 885}
	w, err := RenderSankey(c, diagram.FromLabels(
		[]string{"A"}, []string{"A"}, []string{"A"}, []string{"A"}, []string{"A"},
	), nil)
	if err != nil {
		t.Fatalf("RenderSankey failed: %v", err)
	}
	if x, _ := w.Geometry().ColumnX(2); x != 440 {
		t.Fatalf("column 2 x = %v, want 440", x)
	}

	// drag column 2 left by 80px, then shrink the container before letting go
	for _, ev := range []interact.Event{
		interact.PointerDown{Pos: pt(442, 15), Shift: true},
		interact.PointerMove{Pos: pt(362, 15)},
	} {
		if err := w.Handle(ev); err != nil {
			t.Fatalf("Handle(%T) failed: %v", ev, err)
		}
	}
	c.width = 485
	if err := w.Handle(interact.Resize{Width: 485}); err != nil {
		t.Fatalf("Handle(Resize) failed: %v", err)
	}

	f := c.last()
	if f.Geometry.Spacing != 100 {
		t.Fatalf("spacing after resize = %v, want 100", f.Geometry.Spacing)
	}
	x, _ := f.Geometry.ColumnX(2)
	drawn := x + f.LabelOffset(2)
	slot, _ := f.Geometry.SlotForX(drawn)
	if slot != 1 {
		t.Fatalf("dragged label drawn at x=%v (slot %d), want slot 1", drawn, slot)
	}

	if err := w.Handle(interact.PointerUp{Pos: pt(362, 15)}); err != nil {
		t.Fatalf("Handle(PointerUp) failed: %v", err)
	}
	if !w.Order().Equal(diagram.ColumnOrder{0, 2, 1, 3, 4}) {
		t.Errorf("order after drop = %v, want 0,2,1,3,4", w.Order())
	}
}
