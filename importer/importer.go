// Package importer reads analysis payloads from the formats the tools around the
// diagram produce: the payload itself as JSON or YAML, or raw .ipynb notebooks
// whose cells already carry a stage in their metadata.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"galaxy/diagram"
)

// ErrUnknownFormat is returned when no importer accepts the content.
var ErrUnknownFormat = errors.New("unable to detect format")

// Importer turns one source format into an analysis payload.
type Importer interface {
	// CanImport reports whether content looks like this format.
	CanImport(content string) bool

	// Import converts the input content into an analysis payload
	Import(content string) (*diagram.Payload, error)

	// GetFormatName is the name -input-format selects the importer by.
	GetFormatName() string

	// GetFileExtensions lists the lowercase extensions, dot included.
	GetFileExtensions() []string
}

// ImporterRegistry holds importers in detection order.
type ImporterRegistry struct {
	importers []Importer
}

// NewImporterRegistry creates a registry with the JSON, notebook and YAML importers.
// Detection tries them in that order; YAML comes last since any JSON is also YAML.
func NewImporterRegistry() *ImporterRegistry {
	return &ImporterRegistry{
		importers: []Importer{
			NewJSONImporter(),
			NewNotebookImporter(),
			NewYAMLImporter(),
		},
	}
}

// Register appends an importer. It is tried after the built-in ones.
func (r *ImporterRegistry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat returns the first importer that accepts content.
func (r *ImporterRegistry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, ErrUnknownFormat
}

// Import imports content with the detected importer.
func (r *ImporterRegistry) Import(content string) (*diagram.Payload, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return importer.Import(content)
}

// ImportWithFormat imports content with the named importer.
func (r *ImporterRegistry) ImportWithFormat(content, format string) (*diagram.Payload, error) {
	imp, err := r.Lookup(format)
	if err != nil {
		return nil, err
	}
	return imp.Import(content)
}

// Lookup returns the importer with the given format name.
func (r *ImporterRegistry) Lookup(format string) (Importer, error) {
	format = strings.ToLower(format)
	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// ForPath returns the importer registered for a file's extension.
func (r *ImporterRegistry) ForPath(path string) (Importer, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, imp := range r.importers {
		for _, e := range imp.GetFileExtensions() {
			if e == ext {
				return imp, true
			}
		}
	}
	return nil, false
}

// GetAvailableFormats lists importer names in detection order.
func (r *ImporterRegistry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}
