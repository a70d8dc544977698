package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/oasbridge/oasbridge/internal/domain"
	"github.com/oasbridge/oasbridge/internal/formdata"
	"github.com/oasbridge/oasbridge/internal/schema"
)

// TranslateRequestUseCase rewrites inbound requests targeting the
// generated OpenAPI surface into the router's internal calling convention
// and forwards them. It holds no mutable state; a single instance serves
// any number of concurrent requests.
type TranslateRequestUseCase struct {
	doc       *domain.Doc
	registry  *domain.Registry
	forwarder Forwarder
	endpoint  string
	logger    *slog.Logger
}

// NewTranslateRequestUseCase creates a translator for the given Doc.
// endpoint is the internal router mount path, e.g. "/internal"; translated
// requests go to {endpoint}/{procedure}.
func NewTranslateRequestUseCase(doc *domain.Doc, registry *domain.Registry, forwarder Forwarder, endpoint string, logger *slog.Logger) *TranslateRequestUseCase {
	return &TranslateRequestUseCase{
		doc:       doc,
		registry:  registry,
		forwarder: forwarder,
		endpoint:  endpoint,
		logger:    logger.With("usecase", "TranslateRequest"),
	}
}

// Execute resolves the request against the reverse lookup table, coerces
// query parameters against the procedure's input schema, rewrites the
// request to the internal convention and forwards it. A lookup miss yields
// a synthesized 404 response and no forwarding call; coercion errors
// propagate as errors.
func (uc *TranslateRequestUseCase) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	method := strings.ToLower(req.Method)
	log := uc.logger.With(slog.String("path", req.URL.Path), slog.String("method", method))

	name, ok := uc.doc.Routes.Lookup(req.URL.Path, method)
	if !ok {
		log.Debug("No route for request.")
		return notFoundResponse(req), nil
	}
	log = log.With(slog.String("procedure", name))

	// Input schemas come from the live registry, not from the document.
	proc, err := uc.registry.Procedure(name)
	if err != nil {
		log.Warn("Routed procedure missing from registry.", slog.Any("error", err))
		return notFoundResponse(req), nil
	}

	outURL := *req.URL
	if input := schema.NormalizeVoid(proc.Input()); input != nil {
		fields := formdata.ParseQuery(req.URL.RawQuery)
		values, err := formdata.Coerce(fields, input)
		if err != nil {
			return nil, fmt.Errorf("coerce query for %s: %w", name, err)
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode input for %s: %w", name, err)
		}
		q := url.Values{}
		q.Set("input", string(encoded))
		outURL.RawQuery = q.Encode()
	}
	outURL.Path = path.Join(uc.endpoint, name)

	// The router has no native PUT or DELETE; everything but GET goes
	// through POST internally.
	outMethod := http.MethodPost
	if method == "get" {
		outMethod = http.MethodGet
	}

	fwd, err := http.NewRequestWithContext(ctx, outMethod, outURL.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("build internal request for %s: %w", name, err)
	}
	fwd.Header = req.Header.Clone()

	log.Debug("Forwarding translated request.", slog.String("target", outURL.String()))
	return uc.forwarder.Forward(ctx, fwd)
}

// notFoundResponse synthesizes the 404 returned for unrouted requests.
func notFoundResponse(req *http.Request) *http.Response {
	const body = "Not found"
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	return &http.Response{
		Status:        "404 Not Found",
		StatusCode:    http.StatusNotFound,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
