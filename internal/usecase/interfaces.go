package usecase

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasbridge/oasbridge/internal/domain"
)

// DocGenerator defines the interface for producing the Doc artifact
// (OpenAPI document plus reverse lookup table) from a procedure registry.
type DocGenerator interface {
	Generate(reg *domain.Registry, baseURL string, info *openapi3.Info) (*domain.Doc, error)
}

// Forwarder delivers a rewritten request to the internal router endpoint
// and returns whatever response it produces. It is the only I/O boundary
// of request translation; errors and responses propagate unchanged.
type Forwarder interface {
	Forward(ctx context.Context, req *http.Request) (*http.Response, error)
}
