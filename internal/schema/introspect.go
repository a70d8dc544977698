package schema

// Discriminator reports the kind tag of s, or KindInvalid when s is nil.
func Discriminator(s *Schema) Kind {
	if s == nil {
		return KindInvalid
	}
	return s.kind
}

// Is reports whether s's discriminator equals kind.
func Is(s *Schema, kind Kind) bool {
	return Discriminator(s) == kind
}

// NormalizeVoid maps void schemas to nil so callers can treat "declared as
// void" and "not declared at all" uniformly.
func NormalizeVoid(s *Schema) *Schema {
	if Is(s, KindVoid) {
		return nil
	}
	return s
}

// Unwrap strips optional, nullable and effects wrappers until it reaches
// the first non-wrapper kind. Wrapper chains are finite and acyclic by
// construction, so this always terminates.
func Unwrap(s *Schema) *Schema {
	switch Discriminator(s) {
	case KindOptional, KindNullable, KindEffects:
		return Unwrap(s.inner)
	default:
		return s
	}
}
