package driven

import (
	"context"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// ComplaintSource streams complaint records from tabular storage.
// Implementations read in bounded batches so the full corpus never has
// to fit in memory at once.
type ComplaintSource interface {
	// Stream reads records in batches of up to batchSize. The record
	// channel closes when the source is exhausted; a read failure is
	// sent on the error channel and both channels close. Records with
	// empty narratives are dropped by the source.
	Stream(ctx context.Context, batchSize int) (<-chan []domain.ComplaintRecord, <-chan error)

	// Count returns the number of rows the source will yield, scanning
	// without materialising them. Used for sampling decisions.
	Count(ctx context.Context) (int, error)
}

// PrecomputedSource streams pre-embedded rows: document text, embedding
// vector, and metadata per row.
type PrecomputedSource interface {
	// Validate checks that every row carries all three required columns
	// (document, embedding, metadata) with matching row counts, before
	// any ingestion begins. Returns the total row count. A mismatch is
	// domain.ErrConfiguration; no index mutation may happen after a
	// failed validation.
	Validate(ctx context.Context) (int, error)

	// Stream reads rows in batches of up to batchSize, same channel
	// contract as ComplaintSource.Stream.
	Stream(ctx context.Context, batchSize int) (<-chan []domain.EmbeddedRow, <-chan error)
}
