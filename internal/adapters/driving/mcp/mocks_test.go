package mcp

import (
	"context"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer domain.Answer
	err    error
}

func (m *mockQueryService) AnswerQuestion(_ context.Context, question string) (domain.Answer, error) {
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	answer := m.answer
	answer.Question = question
	return answer, nil
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	sources []domain.SourceDocument
	err     error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string) ([]domain.SourceDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sources, nil
}
