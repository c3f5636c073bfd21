package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"galaxy/canvas"
	"galaxy/core"
	"galaxy/diagram"
	"galaxy/palette"
)

// NodeKind identifies the shape of a scene node.
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindRect
	KindPath
	KindText
)

func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindRect:
		return "rect"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is one element of the scene graph.
type Node struct {
	Kind  NodeKind
	ID    string
	Class string

	// Rect is used by KindRect, Path by KindPath, Text/At/Anchor by KindText.
	Rect   core.Rect
	Path   string
	Text   string
	At     core.Point
	Anchor string

	Fill        colorful.Color
	FillOpacity float64
	// Transform applies to groups only.
	Transform string
	Children  []Node
}

// Scene is a complete drawing. Width and Height are the canvas size in screen pixels.
type Scene struct {
	Width      float64
	Height     float64
	Background colorful.Color
	Root       Node
}

// Find returns the first node with the given id, depth first.
func (s *Scene) Find(id string) (*Node, bool) {
	return find(&s.Root, id)
}

func find(n *Node, id string) (*Node, bool) {
	if n.ID == id {
		return n, true
	}
	for i := range n.Children {
		if found, ok := find(&n.Children[i], id); ok {
			return found, true
		}
	}
	return nil, false
}

// Walk visits every node depth first in paint order.
func (s *Scene) Walk(fn func(*Node)) {
	walk(&s.Root, fn)
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for i := range n.Children {
		walk(&n.Children[i], fn)
	}
}

// LinkStyle decides whether ribbons paint over or under the cells.
type LinkStyle int

const (
	LinksAbove LinkStyle = iota
	LinksBelow
)

// ParseLinkStyle parses "above" or "below".
func ParseLinkStyle(s string) (LinkStyle, error) {
	switch s {
	case "", "above":
		return LinksAbove, nil
	case "below":
		return LinksBelow, nil
	}
	return LinksAbove, fmt.Errorf("unknown link style %q (want above or below)", s)
}

// Renderer builds scenes from frames.
type Renderer struct {
	Style       LinkStyle
	LinkOpacity float64
	FontSize    float64
}

// NewRenderer returns a renderer with ribbons above cells at 0.4 opacity.
func NewRenderer() *Renderer {
	return &Renderer{Style: LinksAbove, LinkOpacity: 0.4, FontSize: 10}
}

// Scene rebuilds the whole scene for a frame. Nothing from earlier scenes is reused.
func (r *Renderer) Scene(f *Frame) *Scene {
	g := f.Geometry
	colors := f.Colors

	s := &Scene{Background: palette.Background}
	if g == nil {
		s.Root = Node{Kind: KindGroup, ID: "root"}
		return s
	}
	s.Width, s.Height = g.Width, g.Height
	if f.Viewport.Width > 0 {
		s.Width = f.Viewport.Width
	}

	cells := Node{Kind: KindGroup, ID: "cells", Class: "cells"}
	for _, c := range g.Cells {
		cells.Children = append(cells.Children, Node{
			Kind:        KindRect,
			ID:          cellID(c.Cell),
			Class:       "cell",
			Rect:        c.Rect,
			Fill:        colors.ColorFor(c.Cell.Stage),
			FillOpacity: 1,
		})
	}

	links := Node{Kind: KindGroup, ID: "links", Class: "links"}
	for i, rb := range g.Ribbons {
		links.Children = append(links.Children, Node{
			Kind:        KindPath,
			ID:          fmt.Sprintf("link-%d", i),
			Class:       "link",
			Path:        rb.Path(),
			Fill:        colors.ColorFor(rb.Link.Stage),
			FillOpacity: r.LinkOpacity,
		})
	}

	labels := Node{Kind: KindGroup, ID: "labels", Class: "labels"}
	for _, c := range g.Columns {
		at := c.LabelAnchor
		at.X += f.LabelOffset(c.Col)
		labels.Children = append(labels.Children, Node{
			Kind:   KindText,
			ID:     fmt.Sprintf("label-%d", c.Col),
			Class:  "column-label",
			Text:   c.Label,
			At:     at,
			Anchor: "middle",
		})
	}

	legend := Node{Kind: KindGroup, ID: "legend", Class: "legend"}
	for i, item := range g.Legend {
		legend.Children = append(legend.Children,
			Node{
				Kind:        KindRect,
				ID:          fmt.Sprintf("legend-swatch-%d", i),
				Class:       "legend-swatch",
				Rect:        item.Swatch,
				Fill:        colors.ColorFor(item.Stage),
				FillOpacity: 1,
			},
			Node{
				Kind:   KindText,
				ID:     fmt.Sprintf("legend-label-%d", i),
				Class:  "legend-label",
				Text:   item.Label,
				At:     item.TextAnchor,
				Anchor: "start",
			},
		)
	}

	layers := []Node{cells, links}
	if r.Style == LinksBelow {
		layers = []Node{links, cells}
	}
	layers = append(layers, labels, legend)

	viewport := Node{
		Kind:      KindGroup,
		ID:        "viewport",
		Transform: f.Transform.String(),
		Children:  layers,
	}
	s.Root = Node{Kind: KindGroup, ID: "root", Children: []Node{viewport}}

	if f.Tooltip.Visible {
		s.Root.Children = append(s.Root.Children, tooltipNode(f.Tooltip, r.FontSize))
	}
	return s
}

func cellID(c diagram.Cell) string {
	return fmt.Sprintf("cell-%d-%d", c.Col, c.Row)
}

// tooltipNode draws the overlay in screen space, offset from the pointer.
func tooltipNode(t Tooltip, fontSize float64) Node {
	lineHeight := fontSize + 4
	width := 0.0
	for _, l := range t.Lines {
		width = max(width, float64(canvas.MeasureText(l))*fontSize*0.6)
	}
	box := core.Rect{
		X:      t.At.X + 10,
		Y:      t.At.Y + 10,
		Width:  width + 12,
		Height: float64(len(t.Lines))*lineHeight + 8,
	}
	n := Node{Kind: KindGroup, ID: "tooltip", Class: "tooltip"}
	n.Children = append(n.Children, Node{
		Kind:        KindRect,
		Class:       "tooltip-box",
		Rect:        box,
		Fill:        colorful.Color{R: 1, G: 1, B: 1},
		FillOpacity: 0.95,
	})
	for i, l := range t.Lines {
		n.Children = append(n.Children, Node{
			Kind:   KindText,
			Class:  "tooltip-text",
			Text:   l,
			At:     core.Point{X: box.X + 6, Y: box.Y + 4 + float64(i+1)*lineHeight - 4},
			Anchor: "start",
		})
	}
	return n
}
