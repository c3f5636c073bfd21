package importer

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"galaxy/diagram"
)

// JSONImporter reads the analysis payload as produced by the analyzer.
type JSONImporter struct{}

// NewJSONImporter creates a new payload importer
func NewJSONImporter() *JSONImporter {
	return &JSONImporter{}
}

// CanImport checks for a JSON object with a notebooks key.
func (j *JSONImporter) CanImport(content string) bool {
	return gjson.Valid(content) && gjson.Get(content, "notebooks").Exists()
}

// Import parses and validates the payload.
func (j *JSONImporter) Import(content string) (*diagram.Payload, error) {
	return diagram.ParsePayload([]byte(content))
}

// GetFormatName returns the format name
func (j *JSONImporter) GetFormatName() string {
	return "json"
}

// GetFileExtensions returns common file extensions
func (j *JSONImporter) GetFileExtensions() []string {
	return []string{".json"}
}

// YAMLImporter reads the payload written as YAML. The document is converted to
// JSON and goes through the same structural checks as JSON input.
type YAMLImporter struct{}

// NewYAMLImporter creates a new YAML payload importer
func NewYAMLImporter() *YAMLImporter {
	return &YAMLImporter{}
}

// CanImport checks for a YAML mapping with a notebooks key.
func (y *YAMLImporter) CanImport(content string) bool {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return false
	}
	_, ok := doc["notebooks"]
	return ok
}

// Import converts the YAML document and parses it as a payload.
func (y *YAMLImporter) Import(content string) (*diagram.Payload, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", diagram.ErrMalformedPayload, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", diagram.ErrMalformedPayload, err)
	}
	return diagram.ParsePayload(data)
}

// GetFormatName returns the format name
func (y *YAMLImporter) GetFormatName() string {
	return "yaml"
}

// GetFileExtensions returns common file extensions
func (y *YAMLImporter) GetFileExtensions() []string {
	return []string{".yaml", ".yml"}
}
