package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

func testHits() []driven.VectorHit {
	return []driven.VectorHit{
		{
			Entry: domain.IndexEntry{
				Content:  "they charged an overdraft fee without warning",
				Metadata: domain.ChunkMetadata{ComplaintID: "1001", Product: "Checking account"},
			},
			Similarity: 0.92,
		},
		{
			Entry: domain.IndexEntry{
				Content:  "the fee was reversed after I called",
				Metadata: domain.ChunkMetadata{ComplaintID: "1002", Product: "Checking account"},
			},
			Similarity: 0.81,
		},
	}
}

func TestRetrieverService_Retrieve_MapsHitsToSources(t *testing.T) {
	index := &mockVectorIndex{created: true, hits: testHits()}
	retriever := NewRetrieverService(&mockEmbeddingService{}, index, 5)

	sources, err := retriever.Retrieve(context.Background(), "what about overdraft fees?")

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "they charged an overdraft fee without warning", sources[0].Content)
	assert.Equal(t, "1001", sources[0].Metadata.ComplaintID)
	assert.InDelta(t, 0.92, sources[0].Similarity, 1e-9)
	assert.InDelta(t, 0.81, sources[1].Similarity, 1e-9)
}

func TestRetrieverService_Retrieve_BlankQuestionReturnsEmpty(t *testing.T) {
	embedder := &mockEmbeddingService{}
	index := &mockVectorIndex{created: true, hits: testHits()}
	retriever := NewRetrieverService(embedder, index, 5)

	sources, err := retriever.Retrieve(context.Background(), "   \n\t ")

	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Equal(t, 0, embedder.embedCalls, "a blank question must not be embedded")
}

func TestRetrieverService_Retrieve_EmptyIndexYieldsEmptySlice(t *testing.T) {
	index := &mockVectorIndex{created: true}
	retriever := NewRetrieverService(&mockEmbeddingService{}, index, 5)

	sources, err := retriever.Retrieve(context.Background(), "anything at all")

	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestRetrieverService_Retrieve_EmbedFailureIsRetrievalError(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("backend down")}
	index := &mockVectorIndex{created: true}
	retriever := NewRetrieverService(embedder, index, 5)

	_, err := retriever.Retrieve(context.Background(), "what happened?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
}

func TestRetrieverService_Retrieve_SearchFailureIsRetrievalError(t *testing.T) {
	index := &mockVectorIndex{created: true, searchErr: errors.New("index corrupt")}
	retriever := NewRetrieverService(&mockEmbeddingService{}, index, 5)

	_, err := retriever.Retrieve(context.Background(), "what happened?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
}

func TestRetrieverService_Retrieve_NilIndex(t *testing.T) {
	retriever := NewRetrieverService(&mockEmbeddingService{}, nil, 5)

	_, err := retriever.Retrieve(context.Background(), "what happened?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestRetrieverService_DefaultTopK(t *testing.T) {
	retriever := NewRetrieverService(&mockEmbeddingService{}, &mockVectorIndex{created: true}, 0)

	assert.Equal(t, domain.DefaultAppSettings().Retrieval.TopK, retriever.topK)
}
