// Package validate checks request payloads against embedded JSON schemas
// and reports failures as field-keyed message maps suitable for 400
// responses.
package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	offerCreateSchema = mustSchema("schemas/offer_create.json")
	offerUpdateSchema = mustSchema("schemas/offer_update.json")
)

func mustSchema(path string) *jsonschema.Schema {
	b, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", path, err))
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", path, err))
	}

	return rs
}

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// OfferCreatePayload validates the body of POST /offers. A nil result
// means the payload is valid.
func OfferCreatePayload(ctx context.Context, body []byte) FieldErrors {
	return validateBytes(ctx, offerCreateSchema, body)
}

// OfferUpdatePayload validates the body of PATCH /offers/{id}; all top
// level fields are optional but must be well-formed when present.
func OfferUpdatePayload(ctx context.Context, body []byte) FieldErrors {
	return validateBytes(ctx, offerUpdateSchema, body)
}

func validateBytes(ctx context.Context, rs *jsonschema.Schema, body []byte) FieldErrors {
	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return FieldErrors{"non_field_errors": {"invalid JSON payload"}}
	}
	if len(keyErrs) == 0 {
		return nil
	}

	fe := FieldErrors{}
	for _, ke := range keyErrs {
		fe.Add(fieldFromPath(ke.PropertyPath), ke.Message)
	}

	return fe
}

// fieldFromPath reduces a JSON pointer like "/details/0/price" to its top
// level field name so clients can render errors inline.
func fieldFromPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "non_field_errors"
	}
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}

	return path
}
