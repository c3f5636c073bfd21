package export

import (
	"bytes"
	"fmt"
	"html"

	"galaxy/render"
)

// HTMLExporter wraps the SVG export in a minimal page.
type HTMLExporter struct {
	svg   *SVGExporter
	title string
}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter(o Options) *HTMLExporter {
	return &HTMLExporter{svg: NewSVGExporter(o), title: o.Title}
}

// Export converts the frame to an HTML document
func (e *HTMLExporter) Export(f *render.Frame) ([]byte, error) {
	svg, err := e.svg.Export(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(e.title))
	buf.WriteString("<style>body{margin:0;font-family:sans-serif;background:#fff}svg{display:block}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(svg)
	buf.WriteString("\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

// GetFileExtension returns the recommended file extension
func (e *HTMLExporter) GetFileExtension() string {
	return ".html"
}

// GetFormatName returns the format name
func (e *HTMLExporter) GetFormatName() string {
	return "HTML"
}
