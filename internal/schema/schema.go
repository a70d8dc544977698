// Package schema models the validation schemas attached to router
// procedures as a closed discriminated union: a handful of leaf kinds,
// object and array composites, and single-inner wrapper kinds (optional,
// nullable, effects). The document builder and the form coercer only ever
// need the discriminator, the object shape, the array element and the
// wrapper's inner schema, so that is the whole surface.
package schema

// Kind is the discriminator tag of a schema node.
type Kind string

const (
	KindInvalid Kind = ""

	// Leaf kinds.
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindVoid    Kind = "void"

	// Composite kinds.
	KindObject Kind = "object"
	KindArray  Kind = "array"

	// Wrapper kinds. Each holds exactly one inner schema and never changes
	// the inner schema's base shape.
	KindOptional Kind = "optional"
	KindNullable Kind = "nullable"
	KindEffects  Kind = "effects"
)

// Property is a named member of an object schema. Object shapes keep
// declaration order, which matters for generated query parameters.
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is one node of a schema tree. Construct values through the
// package-level constructors and the chainable wrapper/annotation methods;
// the zero value is not useful.
type Schema struct {
	kind  Kind
	inner *Schema    // wrapper kinds
	elem  *Schema    // array
	props []Property // object

	title            string
	contentMediaType string
}

// String declares a string schema.
func String() *Schema { return &Schema{kind: KindString} }

// Number declares a numeric schema.
func Number() *Schema { return &Schema{kind: KindNumber} }

// Boolean declares a boolean schema.
func Boolean() *Schema { return &Schema{kind: KindBoolean} }

// Void declares the absence of a meaningful value. Procedures whose input
// or output is void are treated as having none.
func Void() *Schema { return &Schema{kind: KindVoid} }

// Object declares an object schema with the given properties, in order.
func Object(props ...Property) *Schema {
	return &Schema{kind: KindObject, props: props}
}

// Prop pairs a property name with its schema, for use with Object.
func Prop(name string, s *Schema) Property {
	return Property{Name: name, Schema: s}
}

// Array declares an array schema with the given element schema.
func Array(elem *Schema) *Schema {
	return &Schema{kind: KindArray, elem: elem}
}

// Optional wraps s so that its absence is permitted.
func (s *Schema) Optional() *Schema { return &Schema{kind: KindOptional, inner: s} }

// Nullable wraps s so that an explicit null is permitted.
func (s *Schema) Nullable() *Schema { return &Schema{kind: KindNullable, inner: s} }

// Effects wraps s in a transform/refinement layer. The wrapper carries no
// shape information of its own; introspection looks through it.
func (s *Schema) Effects() *Schema { return &Schema{kind: KindEffects, inner: s} }

// WithTitle attaches a component title. Titled schemas are registered in
// the generated document's component table under this name.
func (s *Schema) WithTitle(title string) *Schema {
	s.title = title
	return s
}

// WithContentMediaType declares the wire content type of a request body
// described by this schema, e.g. "multipart/form-data".
func (s *Schema) WithContentMediaType(mt string) *Schema {
	s.contentMediaType = mt
	return s
}

// Kind returns the node's discriminator.
func (s *Schema) Kind() Kind { return s.kind }

// Inner returns the wrapped schema for wrapper kinds, nil otherwise.
func (s *Schema) Inner() *Schema { return s.inner }

// Elem returns the element schema for arrays, nil otherwise.
func (s *Schema) Elem() *Schema { return s.elem }

// Properties returns the object shape in declaration order. The returned
// slice must not be mutated.
func (s *Schema) Properties() []Property { return s.props }

// Property looks up a property by name on an object schema.
func (s *Schema) Property(name string) (*Schema, bool) {
	for _, p := range s.props {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Title returns the component title, or "" when none was declared.
func (s *Schema) Title() string { return s.title }

// ContentMediaType returns the declared wire content type, or "".
func (s *Schema) ContentMediaType() string { return s.contentMediaType }
