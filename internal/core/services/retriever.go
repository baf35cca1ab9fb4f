package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService finds the complaint chunks most similar to a
// question. It embeds the question and runs a top-k search against the
// loaded vector index. No side effects; the index is read-only here.
type RetrieverService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
}

// NewRetrieverService creates a new retriever.
// A non-positive topK falls back to the default.
func NewRetrieverService(embedder driven.EmbeddingService, index driven.VectorIndex, topK int) *RetrieverService {
	if topK <= 0 {
		topK = domain.DefaultAppSettings().Retrieval.TopK
	}
	return &RetrieverService{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Retrieve returns up to topK chunks ranked by similarity to the
// question. An empty index yields an empty slice, not an error.
func (s *RetrieverService) Retrieve(ctx context.Context, question string) ([]domain.SourceDocument, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return []domain.SourceDocument{}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service: %w",
			domain.ErrRetrieval, domain.ErrEmbeddingUnavailable)
	}
	if s.index == nil {
		return nil, fmt.Errorf("%w: no index loaded: %w",
			domain.ErrRetrieval, domain.ErrIndexNotFound)
	}

	logger.Debug("Retrieval: embedding question (%d chars)", len(question))
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrRetrieval, err)
	}

	hits, err := s.index.Search(ctx, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %w", domain.ErrRetrieval, err)
	}
	logger.Debug("Retrieval: %d hits (k=%d, index holds %d entries)",
		len(hits), s.topK, s.index.Len())

	sources := make([]domain.SourceDocument, len(hits))
	for i, hit := range hits {
		sources[i] = domain.SourceDocument{
			Content:    hit.Entry.Content,
			Metadata:   hit.Entry.Metadata,
			Similarity: hit.Similarity,
		}
	}
	return sources, nil
}
