package validate

import (
	"embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schemas
var schemaFS embed.FS

// Embedded schema paths. Cache artifacts are validated structurally on
// verify; selection results are validated in tests and by consumers that
// persist them.
const (
	SchemaCacheManifest   = "schemas/v1/cache/manifest.schema.json"
	SchemaCacheIndex      = "schemas/v1/cache/index.schema.json"
	SchemaCacheDocument   = "schemas/v1/cache/document.schema.json"
	SchemaSelectionResult = "schemas/v1/selection/selection_result.schema.json"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

func ValidateManifest(data []byte) error {
	return validateAgainst(SchemaCacheManifest, data)
}

func ValidateIndex(data []byte) error {
	return validateAgainst(SchemaCacheIndex, data)
}

func ValidateDocument(data []byte) error {
	return validateAgainst(SchemaCacheDocument, data)
}

func ValidateSelectionResult(data []byte) error {
	return validateAgainst(SchemaSelectionResult, data)
}

func validateAgainst(schemaPath string, data []byte) error {
	schema, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}

func loadSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if schema, ok := compiled[schemaPath]; ok {
		return schema, nil
	}
	raw, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiled[schemaPath] = schema
	return schema, nil
}
