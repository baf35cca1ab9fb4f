package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/index/flat"
	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// stubRetriever counts calls so short-circuit behaviour is observable.
type stubRetriever struct {
	sources []domain.SourceDocument
	err     error
	calls   int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string) ([]domain.SourceDocument, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.sources, nil
}

// stubGenerator counts calls so short-circuit behaviour is observable.
type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(
	_ context.Context, _ string, _ []domain.SourceDocument,
) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestQueryService_AnswerQuestion_HappyPath(t *testing.T) {
	retriever := &stubRetriever{sources: testSources()}
	generator := &stubGenerator{text: "Duplicate overdraft fees are the main theme."}
	svc := NewQueryService(retriever, generator)

	answer, err := svc.AnswerQuestion(context.Background(), "what are people unhappy about?")

	require.NoError(t, err)
	assert.Equal(t, "what are people unhappy about?", answer.Question)
	assert.Equal(t, "Duplicate overdraft fees are the main theme.", answer.Text)
	assert.Len(t, answer.Sources, 2)
	assert.False(t, answer.Degraded)
	assert.Empty(t, answer.DegradedReason)
}

func TestQueryService_AnswerQuestion_BlankQuestionShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"whitespace mix", " \t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retriever := &stubRetriever{sources: testSources()}
			generator := &stubGenerator{text: "should never run"}
			svc := NewQueryService(retriever, generator)

			answer, err := svc.AnswerQuestion(context.Background(), tt.question)

			require.NoError(t, err)
			assert.True(t, answer.Empty())
			assert.Equal(t, 0, retriever.calls, "blank question must not reach retrieval")
			assert.Equal(t, 0, generator.calls, "blank question must not reach generation")
		})
	}
}

func TestQueryService_AnswerQuestion_RetrievalFailureDegrades(t *testing.T) {
	retriever := &stubRetriever{
		err: fmt.Errorf("%w: embed question: backend down", domain.ErrRetrieval),
	}
	generator := &stubGenerator{text: "unreachable"}
	svc := NewQueryService(retriever, generator)

	answer, err := svc.AnswerQuestion(context.Background(), "what happened?")

	require.NoError(t, err, "a failed query must degrade, not error")
	assert.True(t, answer.Degraded)
	assert.Equal(t, retrievalFailureText, answer.Text)
	assert.Contains(t, answer.DegradedReason, "backend down")
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0, generator.calls, "generation must be skipped when retrieval fails")
}

func TestQueryService_AnswerQuestion_GenerationFailureKeepsSources(t *testing.T) {
	retriever := &stubRetriever{sources: testSources()}
	generator := &stubGenerator{
		err: fmt.Errorf("%w: model timed out", domain.ErrGeneration),
	}
	svc := NewQueryService(retriever, generator)

	answer, err := svc.AnswerQuestion(context.Background(), "what happened?")

	require.NoError(t, err)
	assert.True(t, answer.Degraded)
	assert.Equal(t, generationFailureText, answer.Text)
	assert.Contains(t, answer.DegradedReason, "model timed out")
	assert.Len(t, answer.Sources, 2, "sources survive a generation failure")
}

func TestQueryService_AnswerQuestion_DegradedTextsDiffer(t *testing.T) {
	// Operators must be able to tell which half of the pipeline failed.
	assert.NotEqual(t, retrievalFailureText, generationFailureText)
}

func TestQueryService_AnswerQuestion_GroundedNoInformationIsNotDegraded(t *testing.T) {
	retriever := &stubRetriever{sources: testSources()}
	generator := &stubGenerator{text: "The context does not contain information about this."}
	svc := NewQueryService(retriever, generator)

	answer, err := svc.AnswerQuestion(context.Background(), "what about yacht loans?")

	require.NoError(t, err)
	assert.False(t, answer.Degraded,
		"a grounded insufficient-context answer is a valid answer")
}

func TestQueryService_AnswerQuestion_PromptGroundedInIndexedChunk(t *testing.T) {
	// Full pipeline over a real index rather than stubs: a chunk that was
	// indexed must reach the model verbatim inside the generation prompt.
	const chunkText = "I was charged two overdraft fees for a single transaction " +
		"and the bank refused to reverse either of them."

	embedder := &mockEmbeddingService{dims: 3}
	idx, err := flat.NewFactory().New(t.TempDir(), "mock-embed", 3)
	require.NoError(t, err)
	defer idx.Close()

	err = idx.Create(context.Background(), []domain.IndexEntry{{
		Embedding: embedder.vector(),
		Content:   chunkText,
		Metadata: domain.ChunkMetadata{
			ComplaintID: "9001",
			Product:     "Checking account",
			Issue:       "Overdraft fees",
			Company:     "Acme Bank",
			Date:        "2023-06-01",
		},
	}})
	require.NoError(t, err)

	llm := &mockLLMService{response: "Customers are charged duplicate overdraft fees."}
	svc := NewQueryService(
		NewRetrieverService(embedder, idx, 3),
		NewGeneratorService(llm, &mockPromptStore{}, 0),
	)

	answer, err := svc.AnswerQuestion(context.Background(),
		"why are people unhappy about overdraft fees?")

	require.NoError(t, err)
	assert.False(t, answer.Degraded)
	assert.Equal(t, "Customers are charged duplicate overdraft fees.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "9001", answer.Sources[0].Metadata.ComplaintID)
	assert.Contains(t, llm.gotPrompt, chunkText,
		"the indexed chunk must appear verbatim in the prompt")
	assert.Contains(t, llm.gotPrompt, "why are people unhappy about overdraft fees?")
}

func TestQueryService_AnswerQuestion_EmptyIndexAnswers(t *testing.T) {
	retriever := &stubRetriever{sources: []domain.SourceDocument{}}
	generator := &stubGenerator{text: "No relevant complaints were found."}
	svc := NewQueryService(retriever, generator)

	answer, err := svc.AnswerQuestion(context.Background(), "anything?")

	require.NoError(t, err)
	assert.False(t, answer.Degraded)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "No relevant complaints were found.", answer.Text)
}
