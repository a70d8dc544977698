package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasbridge/oasbridge/internal/schema"
)

// toSchemaRef converts a schema tree into an inline openapi3 schema.
// Wrapper kinds collapse into the converted base node: nullable adds
// "null" to the type union (stripped again for parameters by the
// sanitizer), optional only affects object-level requiredness, effects
// carry no shape at all.
func toSchemaRef(s *schema.Schema) *openapi3.SchemaRef {
	title := s.Title()
	node := s
	nullable := false
	for {
		switch schema.Discriminator(node) {
		case schema.KindNullable:
			nullable = true
		case schema.KindOptional, schema.KindEffects:
		default:
			return openapi3.NewSchemaRef("", convertBase(node, title, nullable))
		}
		node = node.Inner()
	}
}

func convertBase(node *schema.Schema, title string, nullable bool) *openapi3.Schema {
	if title == "" {
		title = node.Title()
	}
	out := &openapi3.Schema{Title: title}

	switch schema.Discriminator(node) {
	case schema.KindObject:
		out.Type = &openapi3.Types{openapi3.TypeObject}
		out.Properties = openapi3.Schemas{}
		for _, p := range node.Properties() {
			out.Properties[p.Name] = toSchemaRef(p.Schema)
			if !isOptional(p.Schema) {
				out.Required = append(out.Required, p.Name)
			}
		}
	case schema.KindArray:
		out.Type = &openapi3.Types{openapi3.TypeArray}
		out.Items = toSchemaRef(node.Elem())
	case schema.KindString:
		out.Type = &openapi3.Types{openapi3.TypeString}
	case schema.KindNumber:
		out.Type = &openapi3.Types{openapi3.TypeNumber}
	case schema.KindBoolean:
		out.Type = &openapi3.Types{openapi3.TypeBoolean}
	}

	if nullable && out.Type != nil {
		*out.Type = append(*out.Type, openapi3.TypeNull)
	}
	return out
}

// isOptional reports whether the wrapper chain of s contains an optional
// wrapper, i.e. whether the field may be absent.
func isOptional(s *schema.Schema) bool {
	for node := s; ; node = node.Inner() {
		switch schema.Discriminator(node) {
		case schema.KindOptional:
			return true
		case schema.KindNullable, schema.KindEffects:
		default:
			return false
		}
	}
}
