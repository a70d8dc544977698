// Package resthttp is the inbound HTTP adapter: it serves the generated
// OpenAPI document and hands everything else to request translation,
// copying the forwarded response back to the client.
package resthttp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/oasbridge/oasbridge/internal/domain"
	"github.com/oasbridge/oasbridge/internal/usecase"
)

const instrumentationName = "github.com/oasbridge/oasbridge/internal/adapter/inbound/resthttp"

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	translate *usecase.TranslateRequestUseCase
	doc       *domain.Doc
	logger    *slog.Logger
	tracer    trace.Tracer
	requests  metric.Int64Counter
}

// NewHandler creates the inbound handler for the given Doc.
func NewHandler(translate *usecase.TranslateRequestUseCase, doc *domain.Doc, logger *slog.Logger) (*Handler, error) {
	requests, err := otel.Meter(instrumentationName).Int64Counter(
		"oasbridge.requests",
		metric.WithDescription("Inbound requests handled by the bridge."))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	return &Handler{
		translate: translate,
		doc:       doc,
		logger:    logger.With("component", "resthttp_handler"),
		tracer:    otel.Tracer(instrumentationName),
		requests:  requests,
	}, nil
}

// Register sets up the HTTP routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /openapi.json", h.handleSpec)
	mux.HandleFunc("/", h.handleTranslate)
}

// handleSpec serves the generated document.
func (h *Handler) handleSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.doc.Spec); err != nil {
		h.logger.Error("Failed to encode OpenAPI document.", slog.Any("error", err))
	}
}

// handleTranslate runs request translation and streams the forwarded
// response back out.
func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "translate_request", trace.WithAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("url.path", r.URL.Path)))
	defer span.End()

	resp, err := h.translate.Execute(ctx, r)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Request translation failed.", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.requests.Add(ctx, 1, metric.WithAttributes(attribute.Int("http.response.status_code", http.StatusInternalServerError)))
		http.Error(w, fmt.Sprintf("Translation failed: %v", err), http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		w.Header()[key] = values
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn("Failed to copy response body.", slog.Any("error", err))
	}
	h.requests.Add(ctx, 1, metric.WithAttributes(attribute.Int("http.response.status_code", resp.StatusCode)))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
}
