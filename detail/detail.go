// Package detail groups the cells of a selection for the detail view: the
// clicked notebook split by stage, and the clicked stage split by notebook.
package detail

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"galaxy/diagram"
	"galaxy/palette"
)

// Empty is shown when a view has no cells.
const Empty = "No cells available."

// Group is a titled run of cells, possibly split into subgroups.
type Group struct {
	Title    string         `json:"title"`
	Color    string         `json:"color"`
	Cells    []diagram.Cell `json:"cells,omitempty"`
	Children []Group        `json:"children,omitempty"`

	color colorful.Color
}

// View is both groupings of one selection.
type View struct {
	ByNotebook []Group `json:"byNotebook"`
	ByStage    []Group `json:"byStage"`
}

// Labeler names a column. Nil falls back to "Notebook N".
type Labeler func(col int) string

func (l Labeler) label(col int) string {
	if l == nil {
		return fmt.Sprintf("Notebook %d", col+1)
	}
	return l(col)
}

// Build groups a selection. Groups appear in the order their first cell appears.
func Build(sel diagram.Selection, colors *palette.ColorAssignment, labels Labeler) View {
	return View{
		ByNotebook: ByNotebook(sel.NotebookCells, colors, labels),
		ByStage:    ByStage(sel.StageCells, colors, labels),
	}
}

// ByNotebook groups cells by notebook, then by stage inside each notebook.
func ByNotebook(cells []diagram.Cell, colors *palette.ColorAssignment, labels Labeler) []Group {
	var out []Group
	for _, nb := range split(cells, func(c diagram.Cell) string { return labels.label(c.Col) }) {
		g := Group{Title: nb.key}
		for _, st := range split(nb.cells, stageKey) {
			child := colored(st.key, st.cells[0].Stage, colors)
			child.Cells = st.cells
			g.Children = append(g.Children, child)
		}
		out = append(out, g)
	}
	return out
}

// ByStage groups cells by stage, then by notebook inside each stage.
func ByStage(cells []diagram.Cell, colors *palette.ColorAssignment, labels Labeler) []Group {
	var out []Group
	for _, st := range split(cells, stageKey) {
		g := colored("Stage: "+st.key, st.cells[0].Stage, colors)
		for _, nb := range split(st.cells, func(c diagram.Cell) string { return labels.label(c.Col) }) {
			child := colored(nb.key, st.cells[0].Stage, colors)
			child.Cells = nb.cells
			g.Children = append(g.Children, child)
		}
		out = append(out, g)
	}
	return out
}

func stageKey(c diagram.Cell) string {
	return c.Stage.Label()
}

func colored(title string, s diagram.Stage, colors *palette.ColorAssignment) Group {
	c := colors.ColorFor(s)
	return Group{Title: title, Color: c.Hex(), color: c}
}

type bucket struct {
	key   string
	cells []diagram.Cell
}

// split buckets cells by key, keeping first-appearance order of keys and cells.
func split(cells []diagram.Cell, key func(diagram.Cell) string) []bucket {
	var out []bucket
	index := map[string]int{}
	for _, c := range cells {
		k := key(c)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, bucket{key: k})
		}
		out[i].cells = append(out[i].cells, c)
	}
	return out
}

// Line is one row of the text rendering of a view.
type Line struct {
	Text   string
	Color  colorful.Color
	Header bool
}

// Lines renders groups as indented text. Code is cut to its first line.
func Lines(groups []Group) []Line {
	if len(groups) == 0 {
		return []Line{{Text: Empty}}
	}
	var out []Line
	var walk func(gs []Group, depth int)
	walk = func(gs []Group, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, g := range gs {
			out = append(out, Line{Text: indent + g.Title, Color: g.color, Header: true})
			for _, c := range g.Cells {
				out = append(out, Line{Text: indent + "  " + cellLine(c), Color: g.color})
			}
			walk(g.Children, depth+1)
		}
	}
	walk(groups, 0)
	return out
}

func cellLine(c diagram.Cell) string {
	code, _, _ := strings.Cut(strings.TrimSpace(c.Content), "\n")
	return fmt.Sprintf("In [%s]: %s", c.CellID, code)
}
