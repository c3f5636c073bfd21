// Package diagram contains the data model of a stage flow diagram: cells, stages,
// segments, links and the column display order.
package diagram

import (
	"encoding/json"
	"fmt"
)

// Stage is a classification label attached to a notebook cell.
// The zero value means the cell is unclassified.
type Stage string

// Unclassified is the stage of cells that carry no label.
const Unclassified Stage = ""

// UnknownLabel is the display name used for unclassified cells.
const UnknownLabel = "Unknown"

// Known reports whether the stage carries a label.
func (s Stage) Known() bool {
	return s != Unclassified
}

// Label returns the display label of the stage.
func (s Stage) Label() string {
	if !s.Known() {
		return UnknownLabel
	}
	return string(s)
}

// MarshalJSON encodes unclassified stages as null.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts a string or null.
func (s *Stage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Unclassified
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("stage must be a string or null: %w", err)
	}
	*s = Stage(label)
	return nil
}

// Cell is one notebook cell placed in the diagram grid.
// Identity is (Row, Col): Row is the index inside the notebook, Col the notebook index
// in the payload.
type Cell struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
	CellID  string `json:"cellId,omitempty"`
}

// Segment is a maximal contiguous run of cells in one column sharing one stage.
// RowEnd is exclusive.
type Segment struct {
	Col      int   `json:"col"`
	Stage    Stage `json:"stage"`
	RowStart int   `json:"rowStart"`
	RowEnd   int   `json:"rowEnd"`
}

// Len returns the number of rows covered by the segment.
func (s Segment) Len() int {
	return s.RowEnd - s.RowStart
}

// Contains reports whether the row falls inside the segment.
func (s Segment) Contains(row int) bool {
	return row >= s.RowStart && row < s.RowEnd
}

// Link connects the Rank-th segment of a stage in one display column to the
// Rank-th segment of the same stage in the next display column.
type Link struct {
	Stage     Stage   `json:"stage"`
	SourceCol int     `json:"sourceCol"`
	TargetCol int     `json:"targetCol"`
	Source    Segment `json:"source"`
	Target    Segment `json:"target"`
	Rank      int     `json:"rank"`
}

// Selection is the payload emitted when a cell is clicked: every cell of the
// clicked cell's notebook and every cell anywhere sharing its stage.
type Selection struct {
	NotebookCells []Cell `json:"notebookCells"`
	StageCells    []Cell `json:"stageCells"`
}

// Model is the cell matrix derived from one analysis payload.
type Model struct {
	columns [][]Cell
	labels  []string
	stages  []Stage
	unknown bool
}

// ColumnCount returns the number of notebook columns.
func (m *Model) ColumnCount() int {
	return len(m.columns)
}

// Column returns the cells of a column ordered by row.
// The returned slice must not be modified.
func (m *Model) Column(col int) []Cell {
	if col < 0 || col >= len(m.columns) {
		return nil
	}
	return m.columns[col]
}

// Label returns the display label of a column.
func (m *Model) Label(col int) string {
	if col < 0 || col >= len(m.labels) {
		return ""
	}
	return m.labels[col]
}

// Cell returns the cell at (row, col).
func (m *Model) Cell(row, col int) (Cell, bool) {
	cells := m.Column(col)
	if row < 0 || row >= len(cells) {
		return Cell{}, false
	}
	return cells[row], true
}

// MaxRows returns the length of the longest column.
func (m *Model) MaxRows() int {
	rows := 0
	for _, cells := range m.columns {
		if len(cells) > rows {
			rows = len(cells)
		}
	}
	return rows
}

// Stages returns the distinct classified stages in first-seen order
// (columns left to right, cells top to bottom).
func (m *Model) Stages() []Stage {
	out := make([]Stage, len(m.stages))
	copy(out, m.stages)
	return out
}

// HasUnclassified reports whether any cell lacks a stage.
func (m *Model) HasUnclassified() bool {
	return m.unknown
}

// Select builds the selection payload for the cell at (row, col).
func (m *Model) Select(row, col int) (Selection, error) {
	clicked, ok := m.Cell(row, col)
	if !ok {
		return Selection{}, fmt.Errorf("no cell at row %d column %d", row, col)
	}

	sel := Selection{
		NotebookCells: make([]Cell, len(m.columns[col])),
	}
	copy(sel.NotebookCells, m.columns[col])

	for _, cells := range m.columns {
		for _, c := range cells {
			if c.Stage == clicked.Stage {
				sel.StageCells = append(sel.StageCells, c)
			}
		}
	}
	return sel, nil
}
