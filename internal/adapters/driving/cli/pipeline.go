package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/ai"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/index/flat"
	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/services"
)

// queryPipeline bundles the services behind one loaded index.
type queryPipeline struct {
	query     *services.QueryService
	retriever *services.RetrieverService
	index     *flat.Index
	embedder  interface{ Close() error }
	llm       interface{ Close() error }
}

// Close releases the pipeline's resources.
func (p *queryPipeline) Close() {
	if p.index != nil {
		p.index.Close() //nolint:errcheck // best effort on shutdown
	}
	if p.embedder != nil {
		p.embedder.Close() //nolint:errcheck // best effort on shutdown
	}
	if p.llm != nil {
		p.llm.Close() //nolint:errcheck // best effort on shutdown
	}
}

// newQueryPipeline loads the index bundle at indexDir and wires the
// retrieval and generation services around it. The embedding model must
// match the one the index was built with.
func newQueryPipeline(ctx context.Context, indexDir string, topK int) (*queryPipeline, error) {
	settings, err := currentSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, errors.New("no embedding provider configured. Run 'crag settings wizard' first")
	}

	idx, err := flat.Load(ctx, indexDir)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	if idx.Dimensions() != embedder.Dimensions() {
		idx.Close()
		embedder.Close()
		return nil, fmt.Errorf(
			"index at %s was built with %d-dimensional vectors (%s), embedding provider produces %d: %w",
			indexDir, idx.Dimensions(), idx.Model(), embedder.Dimensions(), domain.ErrDimensionMismatch)
	}

	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		idx.Close()
		embedder.Close()
		return nil, err
	}

	if topK <= 0 {
		topK = settings.Retrieval.TopK
	}

	retriever := services.NewRetrieverService(embedder, idx, topK)
	generator := services.NewGeneratorService(llm, promptStore, settings.LLM.Timeout)
	query := services.NewQueryService(retriever, generator)

	p := &queryPipeline{
		query:     query,
		retriever: retriever,
		index:     idx,
		embedder:  embedder,
	}
	if llm != nil {
		p.llm = llm
	}
	return p, nil
}
