package domain

import "github.com/getkin/kin-openapi/openapi3"

// ReverseLookup maps a full external URL path (base path + declared
// sub-path) to a map from lowercase HTTP method to procedure name. It is
// built in the same pass as the document's paths, so everything
// addressable through the document resolves back through this table.
type ReverseLookup map[string]map[string]string

// Lookup resolves a (path, lowercase method) pair to a procedure name.
func (rl ReverseLookup) Lookup(path, method string) (string, bool) {
	methods, ok := rl[path]
	if !ok {
		return "", false
	}
	name, ok := methods[method]
	return name, ok
}

// Add records a routing entry, creating the per-path map on first use.
func (rl ReverseLookup) Add(path, method, procedure string) {
	methods, ok := rl[path]
	if !ok {
		methods = make(map[string]string)
		rl[path] = methods
	}
	methods[method] = procedure
}

// Doc is the artifact of one document build: the OpenAPI document and the
// reverse lookup table that routes inbound requests back to procedures.
// Build it once at startup and treat it as read-only thereafter; it is
// then safe to share across concurrent translations without locking.
type Doc struct {
	Spec   *openapi3.T
	Routes ReverseLookup
}
