package services

import (
	"context"
	"strings"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// User-visible texts for degraded answers. Retrieval and generation
// failures read differently so operators can tell which half of the
// pipeline broke without opening logs.
const (
	retrievalFailureText = "The complaint index could not be searched. " +
		"Check that an index has been built and the embedding service is reachable."
	generationFailureText = "An answer could not be generated for this question. " +
		"The retrieved complaint excerpts are still listed as sources."
)

// QueryService answers questions about the complaint corpus. It runs
// retrieval then generation, and converts failures in either into a
// degraded Answer so a single bad query never crashes a serving
// front-end.
type QueryService struct {
	retriever driving.Retriever
	generator Generator
}

// NewQueryService creates a new query service.
func NewQueryService(retriever driving.Retriever, generator Generator) *QueryService {
	return &QueryService{
		retriever: retriever,
		generator: generator,
	}
}

// AnswerQuestion answers one question with provenance.
func (s *QueryService) AnswerQuestion(ctx context.Context, question string) (domain.Answer, error) {
	logger.Section("Question")
	logger.Debug("Question: %q", question)

	// A blank question short-circuits before any retrieval or
	// generation work.
	if strings.TrimSpace(question) == "" {
		logger.Debug("Blank question, returning empty answer")
		return domain.Answer{Question: question}, nil
	}

	sources, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return domain.Answer{
			Question:       question,
			Text:           retrievalFailureText,
			Degraded:       true,
			DegradedReason: err.Error(),
		}, nil
	}
	logger.Info("Retrieved %d sources", len(sources))

	text, err := s.generator.Generate(ctx, question, sources)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return domain.Answer{
			Question:       question,
			Text:           generationFailureText,
			Sources:        sources,
			Degraded:       true,
			DegradedReason: err.Error(),
		}, nil
	}

	return domain.Answer{
		Question: question,
		Text:     text,
		Sources:  sources,
	}, nil
}
