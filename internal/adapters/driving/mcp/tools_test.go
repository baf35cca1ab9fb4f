package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

func testAnswer() domain.Answer {
	return domain.Answer{
		Text: "Customers most often report duplicate overdraft fees.",
		Sources: []domain.SourceDocument{
			{
				Content: "the bank charged me an overdraft fee twice in one day",
				Metadata: domain.ChunkMetadata{
					ComplaintID: "1001",
					Product:     "Checking or savings account",
					Issue:       "Fees",
					Company:     "Acme Bank",
					Date:        "2024-03-01",
				},
				Similarity: 0.91,
			},
		},
	}
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer with sources", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{answer: testAnswer()}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "what about fees?"})

		require.NoError(t, err)
		assert.Equal(t, "Customers most often report duplicate overdraft fees.", output.Answer)
		assert.False(t, output.Degraded)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "1001", output.Sources[0].ComplaintID)
		assert.Equal(t, "Checking or savings account", output.Sources[0].Product)
		assert.Equal(t, 0.91, output.Sources[0].Similarity)
		assert.Contains(t, output.Sources[0].Excerpt, "overdraft fee twice")
	})

	t.Run("surfaces degraded answers", func(t *testing.T) {
		answer := domain.Answer{Text: "The complaint index could not be searched.", Degraded: true}
		server, err := NewServer(&Ports{Query: &mockQueryService{answer: answer}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "anything?"})

		require.NoError(t, err)
		assert.True(t, output.Degraded)
	})

	t.Run("long excerpts are bounded", func(t *testing.T) {
		answer := testAnswer()
		answer.Sources[0].Content = strings.Repeat("x", 2*domain.SnippetLength)
		server, err := NewServer(&Ports{Query: &mockQueryService{answer: answer}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "anything?"})

		require.NoError(t, err)
		assert.LessOrEqual(t, len(output.Sources[0].Excerpt), domain.SnippetLength+len("..."))
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{err: errors.New("wiring broken")}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything?"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "wiring broken")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieval hits", func(t *testing.T) {
		retriever := &mockRetriever{sources: testAnswer().Sources}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Retriever: retriever})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Question: "fees"})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "1001", output.Results[0].ComplaintID)
	})

	t.Run("errors without a retriever", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Question: "fees"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retriever := &mockRetriever{err: errors.New("index gone")}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Retriever: retriever})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Question: "fees"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "index gone")
	})
}
