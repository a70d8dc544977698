package domain

import (
	"errors"
	"sync"

	"github.com/oasbridge/oasbridge/internal/schema"
)

// ErrProcedureNotFound is returned when a registry lookup misses.
var ErrProcedureNotFound = errors.New("procedure not found")

// Route is the per-procedure routing metadata that places a procedure on
// the generated HTTP surface. Procedures without a Route are invisible to
// document generation and request translation.
type Route struct {
	// Path is the external sub-path, e.g. "/greet".
	Path string
	// Method is one of "get", "post", "put", "delete" (lowercase).
	Method string
}

// Procedure is a named, independently invocable unit of the router with
// declared input/output schemas. Construction is chainable:
//
//	domain.NewProcedure("greet").
//		In(schema.Object(schema.Prop("name", schema.String()))).
//		Out(schema.Object(schema.Prop("message", schema.String()))).
//		Via("/greet", "get")
type Procedure struct {
	name   string
	inputs []*schema.Schema
	output *schema.Schema
	route  *Route
}

// NewProcedure creates a procedure with the given unique name.
func NewProcedure(name string) *Procedure {
	return &Procedure{name: name}
}

// In appends a declared input schema.
func (p *Procedure) In(s *schema.Schema) *Procedure {
	p.inputs = append(p.inputs, s)
	return p
}

// Out declares the output schema.
func (p *Procedure) Out(s *schema.Schema) *Procedure {
	p.output = s
	return p
}

// Via attaches routing metadata exposing the procedure at path with the
// given lowercase HTTP method.
func (p *Procedure) Via(path, method string) *Procedure {
	p.route = &Route{Path: path, Method: method}
	return p
}

// Name returns the procedure's unique name.
func (p *Procedure) Name() string { return p.name }

// Input returns the first declared input schema, or nil.
func (p *Procedure) Input() *schema.Schema {
	if len(p.inputs) == 0 {
		return nil
	}
	return p.inputs[0]
}

// Output returns the declared output schema, or nil.
func (p *Procedure) Output() *schema.Schema { return p.output }

// RouteMeta returns the routing metadata, or nil when the procedure is not
// exposed.
func (p *Procedure) RouteMeta() *Route { return p.route }

// Registry holds the router's procedures, keyed by name and iterated in
// registration order. Registration happens before serving starts; reads
// are safe for any number of concurrent document builds and translations.
type Registry struct {
	mu    sync.RWMutex
	order []string
	procs map[string]*Procedure
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]*Procedure)}
}

// Register adds a procedure. Registering the same name twice replaces the
// earlier entry but keeps its position.
func (r *Registry) Register(p *Procedure) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.procs[p.name]; !exists {
		r.order = append(r.order, p.name)
	}
	r.procs[p.name] = p
	return r
}

// Procedures returns all procedures in registration order.
func (r *Registry) Procedures() []*Procedure {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Procedure, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.procs[name])
	}
	return list
}

// Procedure looks up a procedure by name.
func (r *Registry) Procedure(name string) (*Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.procs[name]
	if !ok {
		return nil, ErrProcedureNotFound
	}
	return p, nil
}
