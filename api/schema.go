package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/cpdtrack/internal/models"
)

//go:embed schemas/log_entry.json
var logEntrySchemaJSON []byte

var logEntrySchema = mustSchema(logEntrySchemaJSON)

func mustSchema(b []byte) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return rs
}

// validateAgainst returns the first schema violation in data as a validation error.
func validateAgainst(ctx context.Context, rs *jsonschema.Schema, data []byte) error {
	keyErrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("invalid json: %v: %w", err, models.ErrValidation)
	}
	if len(keyErrs) == 0 {
		return nil
	}

	ke := keyErrs[0]
	field := strings.TrimPrefix(ke.PropertyPath, "/")
	if field == "" {
		field = "body"
	}
	return models.NewValidationError(field, ke.Message)
}
