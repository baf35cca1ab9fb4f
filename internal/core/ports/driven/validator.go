package driven

import "github.com/creditrust-labs/crag-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations, typically by
// creating a throwaway client and pinging the provider.
type AIConfigValidator interface {
	// ValidateEmbedding checks that an embedding configuration works.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks that an LLM configuration works.
	ValidateLLM(config *domain.LLMSettings) error
}
