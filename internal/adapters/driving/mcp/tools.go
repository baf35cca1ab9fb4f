package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the complaint corpus"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Degraded bool           `json:"degraded,omitempty"`
	Sources  []SourceOutput `json:"sources"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Question string `json:"question" jsonschema:"the question to find similar complaint excerpts for"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SourceOutput `json:"results"`
	Count   int            `json:"count"`
}

// SourceOutput represents one retrieved complaint excerpt.
type SourceOutput struct {
	ComplaintID string  `json:"complaint_id"`
	Product     string  `json:"product"`
	Issue       string  `json:"issue,omitempty"`
	Company     string  `json:"company,omitempty"`
	Date        string  `json:"date,omitempty"`
	Similarity  float64 `json:"similarity"`
	Excerpt     string  `json:"excerpt"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about consumer financial complaints, grounded in retrieved complaint narratives",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find complaint excerpts similar to a question, without generating an answer",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.currentPorts().Query.AnswerQuestion(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		Degraded: answer.Degraded,
		Sources:  toSourceOutputs(answer.Sources),
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	retriever := s.currentPorts().Retriever
	if retriever == nil {
		return nil, SearchOutput{}, errors.New("search is not available: no retriever configured")
	}

	sources, err := retriever.Retrieve(ctx, input.Question)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: toSourceOutputs(sources),
		Count:   len(sources),
	}

	return nil, output, nil
}

// toSourceOutputs converts retrieval hits to their wire representation.
func toSourceOutputs(sources []domain.SourceDocument) []SourceOutput {
	outputs := make([]SourceOutput, len(sources))
	for i, src := range sources {
		outputs[i] = SourceOutput{
			ComplaintID: src.Metadata.ComplaintID,
			Product:     src.Metadata.Product,
			Issue:       src.Metadata.Issue,
			Company:     src.Metadata.Company,
			Date:        src.Metadata.Date,
			Similarity:  src.Similarity,
			Excerpt:     src.Snippet(),
		}
	}
	return outputs
}
