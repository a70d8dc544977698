// Package openapi generates an OpenAPI 3.1 document from the procedure
// registry's routing metadata, together with the reverse lookup table that
// routes inbound requests back to procedure names.
package openapi

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasbridge/oasbridge/internal/domain"
	"github.com/oasbridge/oasbridge/internal/schema"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"

	securitySchemeName = "bearerAuth"
)

// methods supported on the generated surface. Anything else in routing
// metadata is a configuration error.
var supportedMethods = map[string]struct{}{
	"get":    {},
	"post":   {},
	"put":    {},
	"delete": {},
}

// Generator builds the Doc artifact from a registry.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a document generator.
func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{
		logger: logger.With("component", "openapi_generator"),
	}
}

// Generate walks the registry in registration order and derives one path
// item per routed procedure. Procedures without routing metadata are
// silently skipped. The returned Doc holds the sanitized document and the
// reverse lookup table built in the same pass; both are immutable after
// return.
func (g *Generator) Generate(reg *domain.Registry, baseURL string, info *openapi3.Info) (*domain.Doc, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	basePath := strings.TrimSuffix(base.Path, "/")

	paths := openapi3.NewPaths()
	components := openapi3.Schemas{}
	routes := domain.ReverseLookup{}

	generated := 0
	for _, proc := range reg.Procedures() {
		route := proc.RouteMeta()
		if route == nil {
			g.logger.Debug("Skipping procedure without routing metadata.", slog.String("procedure", proc.Name()))
			continue
		}
		method := strings.ToLower(route.Method)
		if _, ok := supportedMethods[method]; !ok {
			return nil, fmt.Errorf("procedure %s: unsupported method %q", proc.Name(), route.Method)
		}

		input := schema.NormalizeVoid(proc.Input())
		output := schema.NormalizeVoid(proc.Output())

		if input != nil && input.Title() != "" {
			components[input.Title()] = toSchemaRef(input)
		}
		if output != nil && output.Title() != "" {
			components[output.Title()] = toSchemaRef(output)
		}

		contentType := contentTypeJSON
		if input != nil && input.ContentMediaType() != "" {
			contentType = input.ContentMediaType()
		}
		if contentType == contentTypeMultipart && method != "post" {
			return nil, fmt.Errorf("procedure %s: %s requests are only supported for post, got %s", proc.Name(), contentTypeMultipart, method)
		}

		op := &openapi3.Operation{
			OperationID: proc.Name(),
			Responses:   buildResponses(output),
		}
		if method == "get" {
			if input != nil {
				op.Parameters = queryParameters(input)
			}
		} else {
			op.RequestBody = requestBody(input, contentType)
		}

		item := paths.Value(route.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			paths.Set(route.Path, item)
		}
		item.SetOperation(strings.ToUpper(method), op)

		routes.Add(basePath+route.Path, method, proc.Name())
		generated++
	}

	doc := assemble(info, baseURL, paths, components)
	Sanitize(doc)

	g.logger.Info("Generated OpenAPI document.",
		slog.Int("procedures", generated),
		slog.String("base_url", baseURL))
	return &domain.Doc{Spec: doc, Routes: routes}, nil
}

// queryParameters maps the top-level properties of a GET input object to
// query parameters. Nullable parameters keep their "null" type member
// here; the sanitizer rewrites them to optional afterwards.
func queryParameters(input *schema.Schema) openapi3.Parameters {
	target := schema.Unwrap(input)
	params := make(openapi3.Parameters, 0, len(target.Properties()))
	for _, p := range target.Properties() {
		params = append(params, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:     p.Name,
				In:       openapi3.ParameterInQuery,
				Required: !isOptional(p.Schema),
				Schema:   toSchemaRef(p.Schema),
			},
		})
	}
	return params
}

// requestBody builds the request body for non-GET procedures. A procedure
// without input still declares an empty application/json placeholder so
// the operation's body is explicitly "nothing expected".
func requestBody(input *schema.Schema, contentType string) *openapi3.RequestBodyRef {
	content := openapi3.Content{}
	if input == nil {
		content[contentTypeJSON] = &openapi3.MediaType{}
	} else {
		mt := &openapi3.MediaType{Schema: toSchemaRef(input)}
		if contentType == contentTypeMultipart {
			mt.Encoding = multipartEncoding(input)
		}
		content[contentType] = mt
	}
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithContent(content),
	}
}

// multipartEncoding marks array-typed top-level properties of a multipart
// object input as exploded, i.e. encoded as repeated form fields.
func multipartEncoding(input *schema.Schema) map[string]*openapi3.Encoding {
	target := schema.Unwrap(input)
	if !schema.Is(target, schema.KindObject) {
		return nil
	}
	var encoding map[string]*openapi3.Encoding
	for _, p := range target.Properties() {
		if !schema.Is(schema.Unwrap(p.Schema), schema.KindArray) {
			continue
		}
		if encoding == nil {
			encoding = make(map[string]*openapi3.Encoding)
		}
		encoding[p.Name] = &openapi3.Encoding{
			Style:   "form",
			Explode: openapi3.BoolPtr(true),
		}
	}
	return encoding
}

// buildResponses wraps the output schema in the router's standard
// {result: {data: ...}} envelope under a single default response.
// Procedures without output declare no responses at all.
func buildResponses(output *schema.Schema) *openapi3.Responses {
	if output == nil {
		return &openapi3.Responses{}
	}
	envelope := openapi3.NewSchemaRef("", &openapi3.Schema{
		Type: &openapi3.Types{openapi3.TypeObject},
		Properties: openapi3.Schemas{
			"result": openapi3.NewSchemaRef("", &openapi3.Schema{
				Type: &openapi3.Types{openapi3.TypeObject},
				Properties: openapi3.Schemas{
					"data": toSchemaRef(output),
				},
				Required: []string{"data"},
			}),
		},
		Required: []string{"result"},
	})
	response := openapi3.NewResponse().
		WithDescription("Successful response").
		WithContent(openapi3.NewContentWithJSONSchemaRef(envelope))
	return openapi3.NewResponses(openapi3.WithName("default", response))
}

// assemble produces the final document from the accumulated parts: a
// single global bearer-auth requirement, the given server URL and a
// pinned OpenAPI revision.
func assemble(info *openapi3.Info, baseURL string, paths *openapi3.Paths, schemas openapi3.Schemas) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.1.0",
		Info:    info,
		Servers: openapi3.Servers{&openapi3.Server{URL: baseURL}},
		Paths:   paths,
		Components: &openapi3.Components{
			Schemas: schemas,
			SecuritySchemes: openapi3.SecuritySchemes{
				securitySchemeName: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
		Security: *openapi3.NewSecurityRequirements().
			With(openapi3.NewSecurityRequirement().Authenticate(securitySchemeName)),
	}
}
