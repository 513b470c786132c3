package output

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateSchema checks body against the JSON schema stored at path.
func ValidateSchema(fs afero.Fs, path string, body []byte) error {
	schemaData, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}
