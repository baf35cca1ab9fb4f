package driven

import (
	"context"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over index entries.
// It is a two-state structure: Empty until Create succeeds, then
// Initialised. The split between Create and Append is deliberate - the
// underlying structure needs a non-empty initial batch before
// incremental inserts are possible - and must be preserved by callers.
type VectorIndex interface {
	// Create initialises the index from its Empty state with a non-empty
	// first batch of entries. Calling Create twice is an error.
	Create(ctx context.Context, entries []domain.IndexEntry) error

	// Append adds entries to an already-created index. Calling Append
	// before Create returns domain.ErrIndexNotInitialised.
	Append(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns the k nearest entries by cosine similarity, ranked
	// descending. Ties are broken by insertion order (earliest first) so
	// results are deterministic. An empty index returns no hits, not an
	// error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Persist writes the index bundle to its directory, atomically
	// replacing any prior content there.
	Persist(ctx context.Context) error

	// Len returns the number of stored entries.
	Len() int

	// Dimensions returns the vector size this index was created with.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit is one similarity search result.
type VectorHit struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}

// IndexFactory creates empty vector indexes bound to a directory.
// Builders use it so the index implementation stays swappable.
type IndexFactory interface {
	// New creates an Empty index that will persist into dir with the
	// given embedding model name and dimensionality.
	New(dir, model string, dimensions int) (VectorIndex, error)
}
