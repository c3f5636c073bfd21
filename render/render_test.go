package render

import (
	"math"
	"strings"
	"testing"

	"galaxy/core"
	"galaxy/diagram"
	"galaxy/flow"
	"galaxy/layout"
	"galaxy/palette"
)

func newFrame(t *testing.T, width float64, p *diagram.Payload) *Frame {
	t.Helper()
	m, err := diagram.NewModel(p)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	segs := flow.BuildAllSegments(m)
	order := diagram.NewColumnOrder(m.ColumnCount())
	g, err := layout.Compute(layout.Input{
		Model:          m,
		Segments:       segs,
		Links:          flow.BuildLinks(order, segs),
		Order:          order,
		ContainerWidth: width,
	}, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return &Frame{
		Geometry:  g,
		Colors:    palette.NewColorAssignment(m.Stages(), palette.Set2),
		Transform: Identity,
	}
}

func childIDs(n *Node) []string {
	ids := make([]string, len(n.Children))
	for i := range n.Children {
		ids[i] = n.Children[i].ID
	}
	return ids
}

func TestTransform(t *testing.T) {
	p := core.Point{X: 12, Y: -7}

	tr := Transform{K: 2, X: 30, Y: 5}
	if got := tr.Invert(tr.Apply(p)); got.Distance(p) > 1e-9 {
		t.Errorf("Invert(Apply(p)) = %v, want %v", got, p)
	}

	at := core.Point{X: 100, Y: 50}
	zoomed := tr.ZoomAt(at, 1.5)
	if zoomed.K != 3 {
		t.Errorf("zoom = %v, want 3", zoomed.K)
	}
	before := tr.Invert(at)
	if got := zoomed.Apply(before); got.Distance(at) > 1e-9 {
		t.Errorf("zoom anchor moved on screen: %v -> %v", at, got)
	}

	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"clamped in", 100, MaxZoom},
		{"clamped out", 0.001, MinZoom},
		{"inside range", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identity.ZoomAt(core.Point{}, tt.factor).K; got != tt.want {
				t.Errorf("K = %v, want %v", got, tt.want)
			}
		})
	}

	if got := (Transform{}).String(); got != "translate(0,0) scale(1)" {
		t.Errorf("zero transform = %q", got)
	}
	if got := Identity.Pan(10, -4).String(); got != "translate(10,-4) scale(1)" {
		t.Errorf("panned transform = %q", got)
	}
}

func TestSceneLayerOrder(t *testing.T) {
	f := newFrame(t, 400, diagram.FromLabels([]string{"A", "B"}, []string{"A"}))

	tests := []struct {
		style LinkStyle
		want  []string
	}{
		{LinksAbove, []string{"cells", "links", "labels", "legend"}},
		{LinksBelow, []string{"links", "cells", "labels", "legend"}},
	}
	for _, tt := range tests {
		r := NewRenderer()
		r.Style = tt.style
		s := r.Scene(f)
		vp, ok := s.Find("viewport")
		if !ok {
			t.Fatal("scene has no viewport group")
		}
		if got := childIDs(vp); strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("style %d layers = %v, want %v", tt.style, got, tt.want)
		}
	}
}

func TestSceneColorsAndOpacity(t *testing.T) {
	f := newFrame(t, 400, diagram.FromLabels([]string{"A", ""}, []string{"A"}))
	s := NewRenderer().Scene(f)

	cell, ok := s.Find("cell-0-0")
	if !ok || cell.Fill != palette.Set2[0] {
		t.Errorf("classified cell fill = %v, want first palette color", cell.Fill.Hex())
	}
	unknown, ok := s.Find("cell-0-1")
	if !ok || unknown.Fill != palette.Neutral {
		t.Errorf("unclassified cell fill = %v, want neutral", unknown.Fill.Hex())
	}

	link, ok := s.Find("link-0")
	if !ok {
		t.Fatal("expected one ribbon")
	}
	if link.FillOpacity != 0.4 || link.Fill != palette.Set2[0] {
		t.Errorf("ribbon fill = %v @ %v", link.Fill.Hex(), link.FillOpacity)
	}
	if _, ok := s.Find("link-1"); ok {
		t.Error("unclassified segments must not produce ribbons")
	}
}

func TestSceneDragOffsetAndTooltip(t *testing.T) {
	f := newFrame(t, 400, diagram.FromLabels([]string{"A"}, []string{"B"}))
	r := NewRenderer()

	plain := r.Scene(f)
	base, _ := plain.Find("label-1")
	if _, ok := plain.Find("tooltip"); ok {
		t.Error("hidden tooltip should not be in the scene")
	}

	f.Drag = Drag{Active: true, Col: 1, DX: -25}
	f.Tooltip = Tooltip{Visible: true, At: core.Point{X: 5, Y: 5}, Lines: []string{"Stage: A"}}
	s := r.Scene(f)

	moved, _ := s.Find("label-1")
	if moved.At.X != base.At.X-25 {
		t.Errorf("dragged label x = %v, want %v", moved.At.X, base.At.X-25)
	}
	other, _ := s.Find("label-0")
	if base0, _ := plain.Find("label-0"); other.At != base0.At {
		t.Error("only the dragged label moves")
	}

	if ids := childIDs(&s.Root); strings.Join(ids, ",") != "viewport,tooltip" {
		t.Errorf("tooltip must sit outside the transformed group, root children = %v", ids)
	}

	f.Tooltip = Tooltip{}
	if _, ok := r.Scene(f).Find("tooltip"); ok {
		t.Error("redraw without a tooltip must not keep the old overlay")
	}
}

func TestWriteSVG(t *testing.T) {
	p := diagram.FromLabels([]string{"A", "A", "B"}, []string{"A", "B"})
	p.Notebooks[0].Name = "<load & clean>"
	f := newFrame(t, 485, p)
	f.Transform = Transform{K: 2, X: 10, Y: 0}

	out := SVG(NewRenderer().Scene(f))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="485"`) {
		t.Errorf("unexpected header: %.80s", out)
	}
	if got := strings.Count(out, `class="cell"`); got != 5 {
		t.Errorf("expected 5 cells, got %d", got)
	}
	if got := strings.Count(out, `fill-opacity="0.4"`); got != 2 {
		t.Errorf("expected 2 translucent ribbons, got %d", got)
	}
	if !strings.Contains(out, `transform="translate(10,0) scale(2)"`) {
		t.Error("viewport transform missing")
	}
	if !strings.Contains(out, "&lt;load &amp; clean&gt;") {
		t.Error("label text must be escaped")
	}
	if strings.Contains(out, "NaN") {
		t.Error("svg contains NaN")
	}
}

func TestRasterizeCellsLabelsLegend(t *testing.T) {
	f := newFrame(t, 485, diagram.FromLabels([]string{"A", "B"}))
	grid, err := Rasterize(f, DefaultRasterOptions())
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	// 320x90 px (one legend row decides the width) at 5x6 px per character
	if w, h := grid.Size(); w != 64 || h != 15 {
		t.Fatalf("grid size = %dx%d, want 64x15", w, h)
	}
	if got := grid.At(8, 7).BG; got != palette.Set2[0] {
		t.Errorf("row 0 cell = %v, want stage A color", got.Hex())
	}
	if got := grid.At(8, 8).BG; got != palette.Set2[1] {
		t.Errorf("row 1 cell = %v, want stage B color", got.Hex())
	}
	if got := grid.At(8, 9).BG; got != palette.Background {
		t.Errorf("below the column should be background, got %v", got.Hex())
	}

	lines := strings.Split(grid.String(), "\n")
	if lines[3] != "    Notebook 1" {
		t.Errorf("label row = %q", lines[3])
	}
	if got := grid.At(8, 12).BG; got != palette.Set2[0] {
		t.Errorf("legend swatch = %v, want stage A color", got.Hex())
	}
	if !strings.Contains(lines[13], "A") {
		t.Errorf("legend text row = %q", lines[13])
	}
}

func TestRasterizeRibbonsBlend(t *testing.T) {
	f := newFrame(t, 485, diagram.FromLabels([]string{"A"}, []string{"A"}))
	grid, err := Rasterize(f, DefaultRasterOptions())
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	want := palette.Blend(palette.Set2[0], palette.Background, 0.4)
	if got := grid.At(40, 7).BG; !got.AlmostEqualRgb(want) {
		t.Errorf("ribbon interior = %v, want %v", got.Hex(), want.Hex())
	}
	if got := grid.At(40, 6).BG; got != palette.Background {
		t.Errorf("above the ribbon = %v, want background", got.Hex())
	}
	if got := grid.At(8, 7).BG; got != palette.Set2[0] {
		t.Errorf("source cell = %v, should stay solid", got.Hex())
	}
	if got := grid.At(88, 7).BG; got != palette.Set2[0] {
		t.Errorf("target cell = %v, should stay solid", got.Hex())
	}
}

func TestRasterizeViewportAndTooltip(t *testing.T) {
	f := newFrame(t, 300, diagram.FromLabels([]string{"A"}, []string{"B"}))
	f.Viewport = core.Rect{Width: 200, Height: 120}
	f.Transform = Transform{K: 2}
	f.Tooltip = Tooltip{Visible: true, At: core.Point{X: 10, Y: 12}, Lines: []string{"Stage: A"}}

	grid, err := Rasterize(f, DefaultRasterOptions())
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if w, h := grid.Size(); w != 40 || h != 20 {
		t.Errorf("grid follows the viewport, got %dx%d", w, h)
	}
	lines := strings.Split(grid.String(), "\n")
	if !strings.Contains(lines[3], "Stage: A") {
		t.Errorf("tooltip row = %q", lines[3])
	}
}

func TestRasterizeEmptyFrame(t *testing.T) {
	grid, err := Rasterize(&Frame{}, RasterOptions{})
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if w, h := grid.Size(); w != 1 || h != 1 {
		t.Errorf("empty frame grid = %dx%d", w, h)
	}
	if math.IsNaN(Identity.Apply(core.Point{X: 1}).X) {
		t.Error("identity produced NaN")
	}
}

func TestTooltipWidthCountsCharacters(t *testing.T) {
	width := func(line string) float64 {
		n := tooltipNode(Tooltip{Visible: true, Lines: []string{line}}, 12)
		return n.Children[0].Rect.Width
	}
	ascii, accented := width("Stage: etude"), width("Stage: étude")
	if ascii != accented {
		t.Errorf("box width = %v for a multibyte label, want %v", accented, ascii)
	}
	if wide := width("Stage: 前処理"); wide <= width("Stage: abc") {
		t.Errorf("double-width runes should widen the box, got %v", wide)
	}
}
