package export

import (
	"fmt"

	"galaxy/render"
)

// ASCIIExporter exports the character-grid rendering of a frame
type ASCIIExporter struct {
	opts  render.RasterOptions
	color bool
}

// NewASCIIExporter creates a new ASCII exporter
func NewASCIIExporter(o Options) *ASCIIExporter {
	opts := render.DefaultRasterOptions()
	opts.Style = o.Style
	return &ASCIIExporter{opts: opts, color: o.Color}
}

// Export rasterizes the frame. Without color, painted areas are drawn with
// block characters.
func (e *ASCIIExporter) Export(f *render.Frame) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFrame
	}
	grid, err := render.Rasterize(f, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize frame: %w", err)
	}
	if e.color {
		return []byte(grid.ANSI()), nil
	}
	return []byte(grid.Shaded()), nil
}

// GetFileExtension returns the recommended file extension
func (e *ASCIIExporter) GetFileExtension() string {
	return ".txt"
}

// GetFormatName returns the format name
func (e *ASCIIExporter) GetFormatName() string {
	return "ASCII/Unicode Art"
}
