package importer

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"galaxy/diagram"
)

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// PayloadSchema is the JSON schema of the analysis payload.
var PayloadSchema = generateSchema[diagram.Payload]()

// PayloadSchemaJSON returns the indented payload schema.
func PayloadSchemaJSON() ([]byte, error) {
	return json.MarshalIndent(PayloadSchema, "", "  ")
}
