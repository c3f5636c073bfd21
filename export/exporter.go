// Package export writes a rendered frame to files: vector, bitmap, terminal text
// and machine-readable geometry.
package export

import (
	"errors"
	"fmt"
	"strings"

	"galaxy/render"
)

// Format represents an export format
type Format string

const (
	// FormatSVG exports the scene as a standalone SVG document (default)
	FormatSVG Format = "svg"
	// FormatPNG exports an antialiased bitmap
	FormatPNG Format = "png"
	// FormatASCII exports the character-grid rendering
	FormatASCII Format = "ascii"
	// FormatJSON exports the computed geometry with stage colors
	FormatJSON Format = "json"
	// FormatHTML exports a page embedding the SVG
	FormatHTML Format = "html"
)

// ErrNilFrame is returned when there is nothing to export.
var ErrNilFrame = errors.New("frame is nil")

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a frame to the target format
	Export(f *render.Frame) ([]byte, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// Options are shared by every exporter. Exporters ignore what they do not use.
type Options struct {
	Style render.LinkStyle
	// Scale multiplies the output size of bitmap exports.
	Scale float64
	// Color enables ANSI colors in text exports.
	Color bool
	// Title is used by document formats.
	Title string
}

// Option configures an exporter.
type Option func(*Options)

// WithLinkStyle sets whether ribbons are drawn above or below cells.
func WithLinkStyle(s render.LinkStyle) Option {
	return func(o *Options) { o.Style = s }
}

// WithScale sets the bitmap scale factor.
func WithScale(scale float64) Option {
	return func(o *Options) { o.Scale = scale }
}

// WithColor enables ANSI colors in the ASCII export.
func WithColor(on bool) Option {
	return func(o *Options) { o.Color = on }
}

// WithTitle sets the document title of the HTML export.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

func buildOptions(opts []Option) Options {
	o := Options{Scale: 1, Title: "Notebook stage flow"}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format, opts ...Option) (Exporter, error) {
	o := buildOptions(opts)
	switch format {
	case FormatSVG:
		return NewSVGExporter(o), nil
	case FormatPNG:
		return NewPNGExporter(o), nil
	case FormatASCII:
		return NewASCIIExporter(o), nil
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatHTML:
		return NewHTMLExporter(o), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "ascii", "text", "txt":
		return FormatASCII, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{
		FormatSVG,
		FormatPNG,
		FormatASCII,
		FormatJSON,
		FormatHTML,
	}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatSVG:   "SVG document (default)",
		FormatPNG:   "PNG bitmap",
		FormatASCII: "Character-grid rendering for terminals",
		FormatJSON:  "Layout geometry with stage colors",
		FormatHTML:  "HTML page embedding the SVG",
	}
}
