package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

func testSources() []domain.SourceDocument {
	return []domain.SourceDocument{
		{Content: "the bank charged me an overdraft fee twice", Similarity: 0.9},
		{Content: "my card was declined despite sufficient funds", Similarity: 0.8},
	}
}

func TestGeneratorService_Generate_GroundsPromptInSources(t *testing.T) {
	llm := &mockLLMService{response: "Customers report duplicate overdraft fees."}
	gen := NewGeneratorService(llm, &mockPromptStore{}, 0)

	answer, err := gen.Generate(context.Background(), "what are the fee complaints?", testSources())

	require.NoError(t, err)
	assert.Equal(t, "Customers report duplicate overdraft fees.", answer)

	// Every retrieved excerpt and the question appear in the prompt,
	// with the context ahead of the question.
	assert.Contains(t, llm.gotPrompt, "the bank charged me an overdraft fee twice")
	assert.Contains(t, llm.gotPrompt, "my card was declined despite sufficient funds")
	assert.Contains(t, llm.gotPrompt, "what are the fee complaints?")
	ctxPos := strings.Index(llm.gotPrompt, "overdraft fee twice")
	qPos := strings.Index(llm.gotPrompt, "what are the fee complaints?")
	assert.Less(t, ctxPos, qPos)
}

func TestGeneratorService_Generate_SourcesJoinedByBlankLine(t *testing.T) {
	llm := &mockLLMService{response: "ok"}
	gen := NewGeneratorService(llm, &mockPromptStore{}, 0)

	_, err := gen.Generate(context.Background(), "question?", testSources())

	require.NoError(t, err)
	assert.Contains(t, llm.gotPrompt,
		"the bank charged me an overdraft fee twice\n\nmy card was declined despite sufficient funds")
}

func TestGeneratorService_Generate_NoSourcesStillHonest(t *testing.T) {
	llm := &mockLLMService{response: "The context does not contain this information."}
	gen := NewGeneratorService(llm, &mockPromptStore{}, 0)

	answer, err := gen.Generate(context.Background(), "what about crypto?", nil)

	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Contains(t, llm.gotPrompt, noContextText)
}

func TestGeneratorService_Generate_UsesConservativeOptions(t *testing.T) {
	llm := &mockLLMService{response: "answer"}
	gen := NewGeneratorService(llm, &mockPromptStore{}, 0)

	_, err := gen.Generate(context.Background(), "question?", testSources())

	require.NoError(t, err)
	assert.Equal(t, defaultMaxTokens, llm.gotOpts.MaxTokens)
	assert.InDelta(t, defaultTemperature, llm.gotOpts.Temperature, 1e-9)
}

func TestGeneratorService_Generate_TrimsResponse(t *testing.T) {
	llm := &mockLLMService{response: "\n  the answer  \n\n"}
	gen := NewGeneratorService(llm, &mockPromptStore{}, 0)

	answer, err := gen.Generate(context.Background(), "question?", testSources())

	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestGeneratorService_Generate_LLMFailureIsGenerationError(t *testing.T) {
	llm := &mockLLMService{generateErr: errors.New("model timed out")}
	gen := NewGeneratorService(llm, &mockPromptStore{}, time.Second)

	_, err := gen.Generate(context.Background(), "question?", testSources())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestGeneratorService_Generate_NilLLM(t *testing.T) {
	gen := NewGeneratorService(nil, &mockPromptStore{}, 0)

	_, err := gen.Generate(context.Background(), "question?", testSources())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGeneratorService_Generate_PromptLoadFailure(t *testing.T) {
	llm := &mockLLMService{response: "never reached"}
	gen := NewGeneratorService(llm, &mockPromptStore{loadErr: errors.New("unreadable")}, 0)

	_, err := gen.Generate(context.Background(), "question?", testSources())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, 0, llm.generateCalls)
}
