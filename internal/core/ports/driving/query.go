package driving

import (
	"context"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// QueryService answers questions about the complaint corpus.
// This is the single operation the CLI, TUI, and MCP adapters call.
type QueryService interface {
	// AnswerQuestion retrieves grounding chunks for the question and
	// generates an answer from them. A blank or whitespace-only question
	// short-circuits to an empty Answer without invoking retrieval or
	// generation. Retrieval and generation failures are recovered into a
	// degraded Answer rather than returned as errors, so a single bad
	// query never crashes a serving front-end.
	AnswerQuestion(ctx context.Context, question string) (domain.Answer, error)
}

// Retriever exposes the retrieval half of the pipeline on its own,
// for callers that want sources without generation.
type Retriever interface {
	// Retrieve embeds the question and returns up to k similar chunks in
	// ranked order. An empty index yields an empty slice, not an error.
	Retrieve(ctx context.Context, question string) ([]domain.SourceDocument, error)
}
