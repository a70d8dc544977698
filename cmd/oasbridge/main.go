package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/getkin/kin-openapi/openapi3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oasbridge/oasbridge/configs"
	"github.com/oasbridge/oasbridge/internal/adapter/inbound/resthttp"
	"github.com/oasbridge/oasbridge/internal/adapter/outbound/httpforward"
	"github.com/oasbridge/oasbridge/internal/adapter/outbound/openapi"
	"github.com/oasbridge/oasbridge/internal/domain"
	"github.com/oasbridge/oasbridge/internal/schema"
	"github.com/oasbridge/oasbridge/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Procedure Registry ===
	// TODO: load procedure definitions from the embedding application
	// instead of the built-in demo set.
	registry := demoRegistry()

	// === Document Build ===
	generator := openapi.NewGenerator(logger)
	buildUC := usecase.NewBuildDocUseCase(generator, logger)
	info := &openapi3.Info{
		Title:       cfg.APITitle,
		Version:     cfg.APIVersion,
		Description: cfg.APIDescription,
	}
	doc, err := buildUC.Execute(registry, cfg.BaseURL, info)
	if err != nil {
		logger.Error("Failed to build OpenAPI document.", slog.Any("error", err))
		os.Exit(1)
	}

	// === Request Translation ===
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	forwarder, err := httpforward.New(cfg.InternalBaseURL, httpClient, logger)
	if err != nil {
		logger.Error("Failed to configure forwarder.", slog.Any("error", err))
		os.Exit(1)
	}
	translateUC := usecase.NewTranslateRequestUseCase(doc, registry, forwarder, cfg.InternalEndpoint, logger)

	// === HTTP Server ===
	mux := http.NewServeMux()
	handler, err := resthttp.NewHandler(translateUC, doc, logger)
	if err != nil {
		logger.Error("Failed to create HTTP handler.", slog.Any("error", err))
		os.Exit(1)
	}
	handler.Register(mux)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
	go func() {
		logger.Info("HTTP server starting.", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed.", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed.", slog.Any("error", err))
	}
	logger.Info("Server shut down gracefully.")
}

// demoRegistry builds a small procedure set covering the surface the
// bridge generates: GET with query input, POST with JSON body, multipart
// upload and a routeless internal procedure.
func demoRegistry() *domain.Registry {
	return domain.NewRegistry().
		Register(domain.NewProcedure("greet").
			In(schema.Object(schema.Prop("name", schema.String()))).
			Out(schema.Object(schema.Prop("message", schema.String()))).
			Via("/greet", "get")).
		Register(domain.NewProcedure("listPosts").
			In(schema.Object(
				schema.Prop("tags", schema.Array(schema.String()).Optional()),
				schema.Prop("limit", schema.Number().Nullable()))).
			Out(schema.Object(schema.Prop("posts", schema.Array(schema.String()))).WithTitle("PostList")).
			Via("/posts", "get")).
		Register(domain.NewProcedure("createPost").
			In(schema.Object(
				schema.Prop("title", schema.String()),
				schema.Prop("draft", schema.Boolean().Optional()))).
			Out(schema.Object(schema.Prop("id", schema.String()))).
			Via("/posts", "post")).
		Register(domain.NewProcedure("uploadAttachment").
			In(schema.Object(
				schema.Prop("post", schema.String()),
				schema.Prop("files", schema.Array(schema.String()))).
				WithContentMediaType("multipart/form-data")).
			Out(schema.Object(schema.Prop("count", schema.Number()))).
			Via("/attachments", "post")).
		Register(domain.NewProcedure("purgeCache"))
}

// initOtelProvider initializes the OpenTelemetry SDK with an OTLP trace
// exporter and returns a shutdown function. Tracing is disabled when no
// endpoint is configured.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("oasbridge"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
