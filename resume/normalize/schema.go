package normalize

import (
	_ "embed"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/canonical.schema.json
var canonicalSchemaJSON []byte

var (
	canonicalSchemaOnce sync.Once
	canonicalSchema     *gojsonschema.Schema
	canonicalSchemaErr  error
)

func loadCanonicalSchema() (*gojsonschema.Schema, error) {
	canonicalSchemaOnce.Do(func() {
		canonicalSchema, canonicalSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(canonicalSchemaJSON))
	})
	return canonicalSchema, canonicalSchemaErr
}

// IsCanonical reports whether payload already has the canonical document
// shape, in which case it is decoded directly without alias coalescing.
func IsCanonical(payload map[string]any) bool {
	schema, err := loadCanonicalSchema()
	if err != nil {
		return false
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return false
	}
	return res.Valid()
}

// CanonicalSchema returns the embedded JSON schema of the canonical document.
func CanonicalSchema() []byte {
	return canonicalSchemaJSON
}
