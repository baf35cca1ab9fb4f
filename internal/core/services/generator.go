package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

// Ensure GeneratorService implements the interface.
var _ Generator = (*GeneratorService)(nil)

// Generator produces grounded answer text from retrieved sources.
type Generator interface {
	// Generate builds the grounded prompt from the question and sources
	// and returns the model's answer text, trimmed.
	Generate(ctx context.Context, question string, sources []domain.SourceDocument) (string, error)
}

// Generation defaults. Low temperature keeps answers close to the
// retrieved excerpts.
const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.1
	defaultGenTimeout  = 300 * time.Second

	// noContextText is substituted when retrieval found nothing, so the
	// prompt still instructs the model honestly instead of handing it an
	// empty context block.
	noContextText = "(no relevant complaint excerpts were found)"
)

// GeneratorService produces answers grounded in retrieved complaint
// excerpts. One LLM call per question, bounded by a timeout; a hard
// failure surfaces as ErrGeneration with no retry.
type GeneratorService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
}

// NewGeneratorService creates a new generator.
// A zero timeout falls back to the default.
func NewGeneratorService(llm driven.LLMService, prompts driven.PromptStore, timeout time.Duration) *GeneratorService {
	if timeout <= 0 {
		timeout = defaultGenTimeout
	}
	return &GeneratorService{
		llm:     llm,
		prompts: prompts,
		timeout: timeout,
	}
}

// Generate answers the question from the given sources.
func (s *GeneratorService) Generate(
	ctx context.Context, question string, sources []domain.SourceDocument,
) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	prompt, err := s.buildPrompt(question, sources)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.Debug("Generation: %d sources, prompt %d chars, timeout %s",
		len(sources), len(prompt), s.timeout)

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return strings.TrimSpace(text), nil
}

// buildPrompt fills the answer template with the joined source texts
// and the question.
func (s *GeneratorService) buildPrompt(question string, sources []domain.SourceDocument) (string, error) {
	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}

	contextBlock := noContextText
	if len(sources) > 0 {
		texts := make([]string, len(sources))
		for i, src := range sources {
			texts[i] = src.Content
		}
		contextBlock = strings.Join(texts, "\n\n")
	}

	return fmt.Sprintf(template, contextBlock, question), nil
}
