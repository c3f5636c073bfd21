package diagram

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedPayload is returned (wrapped) when an analysis payload does not have
// the expected shape. Nothing is rendered from a malformed payload.
var ErrMalformedPayload = errors.New("malformed analysis payload")

// Payload is the analysis result: one entry per notebook, cells in notebook order.
type Payload struct {
	Notebooks []Notebook `json:"notebooks" jsonschema:"required,description=Analyzed notebooks in input order"`
}

// Notebook is one analyzed notebook.
type Notebook struct {
	Name  string        `json:"name,omitempty" jsonschema:"description=Optional column label"`
	Path  string        `json:"path,omitempty" jsonschema:"description=Notebook path the cells were read from"`
	Cells []PayloadCell `json:"cells" jsonschema:"required"`
}

// PayloadCell is one classified cell. A null, absent or empty Class means unclassified.
type PayloadCell struct {
	Code   string  `json:"code" jsonschema:"description=Cell source"`
	Class  *string `json:"class" jsonschema:"oneof_type=string;null,description=Stage label or null when unclassified"`
	CellID *string `json:"cell_id" jsonschema:"oneof_type=string;null"`
}

// ParsePayload decodes a JSON analysis payload, failing fast with a descriptive error
// when the structure is not {notebooks: [{cells: [...]}, ...]}.
func ParsePayload(data []byte) (*Payload, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: payload must be an object", ErrMalformedPayload)
	}

	notebooks := root.Get("notebooks")
	if !notebooks.Exists() || notebooks.Type == gjson.Null {
		return nil, fmt.Errorf("%w: missing notebooks", ErrMalformedPayload)
	}
	if !notebooks.IsArray() {
		return nil, fmt.Errorf("%w: notebooks must be an array", ErrMalformedPayload)
	}

	for i, nb := range notebooks.Array() {
		if !nb.IsObject() {
			return nil, fmt.Errorf("%w: notebook %d must be an object", ErrMalformedPayload, i)
		}
		cells := nb.Get("cells")
		if !cells.IsArray() {
			return nil, fmt.Errorf("%w: notebook %d: cells must be an array", ErrMalformedPayload, i)
		}
		for j, cell := range cells.Array() {
			if err := checkCell(cell); err != nil {
				return nil, fmt.Errorf("%w: notebook %d cell %d: %v", ErrMalformedPayload, i, j, err)
			}
		}
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

func checkCell(cell gjson.Result) error {
	if !cell.IsObject() {
		return errors.New("cell must be an object")
	}
	for _, field := range []string{"class", "cell_id", "code"} {
		v := cell.Get(field)
		if !v.Exists() || v.Type == gjson.Null || v.Type == gjson.String {
			continue
		}
		return fmt.Errorf("%s must be a string or null", field)
	}
	return nil
}

// NewModel derives the cell matrix from a payload.
func NewModel(p *Payload) (*Model, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: payload is nil", ErrMalformedPayload)
	}
	if p.Notebooks == nil {
		return nil, fmt.Errorf("%w: missing notebooks", ErrMalformedPayload)
	}

	m := &Model{
		columns: make([][]Cell, len(p.Notebooks)),
		labels:  make([]string, len(p.Notebooks)),
	}
	seen := make(map[Stage]bool)

	for col, nb := range p.Notebooks {
		m.labels[col] = nb.Name
		if m.labels[col] == "" {
			m.labels[col] = fmt.Sprintf("Notebook %d", col+1)
		}

		cells := make([]Cell, len(nb.Cells))
		for row, pc := range nb.Cells {
			c := Cell{Row: row, Col: col, Content: pc.Code}
			if pc.Class != nil {
				c.Stage = Stage(*pc.Class)
			}
			if pc.CellID != nil {
				c.CellID = *pc.CellID
			}
			cells[row] = c

			if !c.Stage.Known() {
				m.unknown = true
				continue
			}
			if !seen[c.Stage] {
				seen[c.Stage] = true
				m.stages = append(m.stages, c.Stage)
			}
		}
		m.columns[col] = cells
	}
	return m, nil
}

// FromLabels builds a payload from per-notebook stage labels. An empty label is unclassified.
// It is a convenience for tests and demos.
func FromLabels(notebooks ...[]string) *Payload {
	p := &Payload{Notebooks: make([]Notebook, len(notebooks))}
	for i, labels := range notebooks {
		cells := make([]PayloadCell, len(labels))
		for j, label := range labels {
			if label != "" {
				l := label
				cells[j].Class = &l
			}
			id := fmt.Sprintf("nb%d-c%d", i, j)
			cells[j].CellID = &id
			cells[j].Code = fmt.Sprintf("# %s", label)
		}
		p.Notebooks[i] = Notebook{Cells: cells}
	}
	return p
}
