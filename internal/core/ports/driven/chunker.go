package driven

import (
	"context"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// Chunker splits a complaint narrative into bounded, overlapping chunks
// carrying the parent record's metadata. An empty narrative yields no
// chunks and no error.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Split produces the chunks for one record in emission order.
	// ChunkIndex is contiguous from zero within the record.
	Split(ctx context.Context, record domain.ComplaintRecord) ([]domain.Chunk, error)
}
