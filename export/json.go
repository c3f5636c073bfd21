package export

import (
	"encoding/json"

	"galaxy/core"
	"galaxy/diagram"
	"galaxy/layout"
	"galaxy/render"
)

// JSONExporter exports the layout geometry of a frame with resolved colors
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Document is the JSON export of one frame.
type Document struct {
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Spacing   float64          `json:"spacing"`
	Transform string           `json:"transform"`
	Order     []int            `json:"order"`
	Columns   []layout.Column  `json:"columns"`
	Cells     []DocumentCell   `json:"cells"`
	Ribbons   []DocumentRibbon `json:"ribbons"`
	Legend    []DocumentLegend `json:"legend"`
}

// DocumentCell is a cell rectangle with its stage color.
type DocumentCell struct {
	diagram.Cell
	Rect  core.Rect `json:"rect"`
	Color string    `json:"color"`
}

// DocumentRibbon is one link shape.
type DocumentRibbon struct {
	Stage     diagram.Stage `json:"stage"`
	SourceCol int           `json:"sourceCol"`
	TargetCol int           `json:"targetCol"`
	Path      string        `json:"path"`
	Color     string        `json:"color"`
}

// DocumentLegend is one legend entry.
type DocumentLegend struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Export converts the frame geometry to JSON
func (e *JSONExporter) Export(f *render.Frame) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFrame
	}
	doc := NewDocument(f)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return data, nil
}

// NewDocument flattens a frame into its JSON document.
func NewDocument(f *render.Frame) Document {
	doc := Document{
		Transform: f.Transform.String(),
		Order:     []int{},
		Columns:   []layout.Column{},
		Cells:     []DocumentCell{},
		Ribbons:   []DocumentRibbon{},
		Legend:    []DocumentLegend{},
	}
	g := f.Geometry
	if g == nil {
		return doc
	}
	doc.Width, doc.Height, doc.Spacing = g.Width, g.Height, g.Spacing
	doc.Order = g.Order()
	doc.Columns = append(doc.Columns, g.Columns...)
	for _, c := range g.Cells {
		doc.Cells = append(doc.Cells, DocumentCell{Cell: c.Cell, Rect: c.Rect, Color: f.Colors.Hex(c.Cell.Stage)})
	}
	for _, r := range g.Ribbons {
		doc.Ribbons = append(doc.Ribbons, DocumentRibbon{
			Stage:     r.Link.Stage,
			SourceCol: r.Link.SourceCol,
			TargetCol: r.Link.TargetCol,
			Path:      r.Path(),
			Color:     f.Colors.Hex(r.Link.Stage),
		})
	}
	for _, item := range g.Legend {
		doc.Legend = append(doc.Legend, DocumentLegend{Label: item.Label, Color: f.Colors.Hex(item.Stage)})
	}
	return doc
}

// GetFileExtension returns the file extension for JSON
func (e *JSONExporter) GetFileExtension() string {
	return ".json"
}

// GetFormatName returns the format name
func (e *JSONExporter) GetFormatName() string {
	return "JSON"
}
