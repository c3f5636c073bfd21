package export

import (
	"bytes"
	"fmt"

	"galaxy/render"
)

// SVGExporter serializes the scene graph of a frame.
type SVGExporter struct {
	renderer *render.Renderer
}

// NewSVGExporter creates a new SVG exporter
func NewSVGExporter(o Options) *SVGExporter {
	r := render.NewRenderer()
	r.Style = o.Style
	return &SVGExporter{renderer: r}
}

// Export converts the frame to an SVG document
func (e *SVGExporter) Export(f *render.Frame) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFrame
	}
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, e.renderer.Scene(f)); err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// GetFileExtension returns the recommended file extension
func (e *SVGExporter) GetFileExtension() string {
	return ".svg"
}

// GetFormatName returns the format name
func (e *SVGExporter) GetFormatName() string {
	return "SVG"
}
