package usecase

import (
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasbridge/oasbridge/internal/domain"
)

// BuildDocUseCase runs document generation at startup. The resulting Doc
// is read-only from then on and shared by every translation.
type BuildDocUseCase struct {
	generator DocGenerator
	logger    *slog.Logger
}

// NewBuildDocUseCase creates a new BuildDocUseCase.
func NewBuildDocUseCase(generator DocGenerator, logger *slog.Logger) *BuildDocUseCase {
	return &BuildDocUseCase{
		generator: generator,
		logger:    logger.With("usecase", "BuildDoc"),
	}
}

// Execute generates the document and reverse lookup table for the given
// registry. Configuration errors from the generator propagate unwrapped in
// meaning: the caller decides whether startup survives them.
func (uc *BuildDocUseCase) Execute(reg *domain.Registry, baseURL string, info *openapi3.Info) (*domain.Doc, error) {
	doc, err := uc.generator.Generate(reg, baseURL, info)
	if err != nil {
		uc.logger.Error("Document generation failed.", slog.Any("error", err))
		return nil, fmt.Errorf("generate document: %w", err)
	}

	routed := 0
	for _, methods := range doc.Routes {
		routed += len(methods)
	}
	uc.logger.Info("Document built.",
		slog.Int("routes", routed),
		slog.String("openapi", doc.Spec.OpenAPI))
	return doc, nil
}
