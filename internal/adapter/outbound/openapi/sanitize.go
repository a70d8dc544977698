package openapi

import "github.com/getkin/kin-openapi/openapi3"

// Sanitize rewrites nullable type unions in place. OpenAPI 3.1 expresses
// nullability as a "null" member of the type array; the router's calling
// convention instead treats nullable fields as optional and never rejects
// them for absence. For GET parameters the null member is stripped and the
// parameter flipped to not-required; for multipart POST bodies only the
// top-level property types are stripped, since form field requiredness is
// tracked on the body schema itself. Reference nodes are left alone.
// Running the pass twice is a no-op.
func Sanitize(doc *openapi3.T) {
	if doc.Paths == nil {
		return
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		if op := item.Get; op != nil {
			sanitizeParameters(op.Parameters)
		}
		if op := item.Post; op != nil {
			sanitizeMultipartBody(op.RequestBody)
		}
	}
}

func sanitizeParameters(params openapi3.Parameters) {
	for _, ref := range params {
		if ref == nil || ref.Ref != "" || ref.Value == nil {
			continue
		}
		sref := ref.Value.Schema
		if sref == nil || sref.Ref != "" || sref.Value == nil {
			continue
		}
		if stripNull(sref.Value) {
			ref.Value.Required = false
		}
	}
}

func sanitizeMultipartBody(body *openapi3.RequestBodyRef) {
	if body == nil || body.Ref != "" || body.Value == nil {
		return
	}
	mt := body.Value.Content[contentTypeMultipart]
	if mt == nil || mt.Schema == nil || mt.Schema.Ref != "" || mt.Schema.Value == nil {
		return
	}
	for _, prop := range mt.Schema.Value.Properties {
		if prop == nil || prop.Ref != "" || prop.Value == nil {
			continue
		}
		stripNull(prop.Value)
	}
}

// stripNull removes the "null" member from a schema's type union and
// reports whether anything was removed. A singleton union left behind
// serializes as a plain type, which is the collapse the convention wants.
func stripNull(s *openapi3.Schema) bool {
	if s.Type == nil {
		return false
	}
	kept := make(openapi3.Types, 0, len(*s.Type))
	for _, t := range *s.Type {
		if t != openapi3.TypeNull {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(*s.Type) {
		return false
	}
	s.Type = &kept
	return true
}
