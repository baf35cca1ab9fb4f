// Package flat implements a flat (exhaustive) cosine-similarity vector
// index. Entries live in memory during build and query; persistence is
// a directory bundle holding a SQLite entries database and a TOML
// manifest, swapped into place atomically.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one stored vector with its precomputed norm.
type entry struct {
	domain.IndexEntry
	norm float64
}

// Index is a flat in-memory vector index bound to a persistence
// directory. It starts Empty; Create moves it to Initialised and only
// then does Append accept entries.
type Index struct {
	mu         sync.RWMutex
	dir        string
	model      string
	dimensions int
	created    bool
	entries    []entry
}

// newIndex builds an Empty index. Callers go through the Factory or Load.
func newIndex(dir, model string, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("index dimensions must be positive, got %d: %w",
			dimensions, domain.ErrConfiguration)
	}

	return &Index{
		dir:        dir,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Create initialises the index with its first, non-empty batch.
func (idx *Index) Create(_ context.Context, entries []domain.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.created {
		return fmt.Errorf("index already created: %w", domain.ErrIngestion)
	}
	if len(entries) == 0 {
		return fmt.Errorf("creating index from empty batch: %w", domain.ErrEmptyInput)
	}

	if err := idx.insert(entries); err != nil {
		return err
	}

	idx.created = true
	return nil
}

// Append adds entries to an initialised index.
func (idx *Index) Append(_ context.Context, entries []domain.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.created {
		return domain.ErrIndexNotInitialised
	}

	return idx.insert(entries)
}

// insert validates dimensions and stores entries in arrival order.
// Callers hold the write lock.
func (idx *Index) insert(batch []domain.IndexEntry) error {
	for i, e := range batch {
		if len(e.Embedding) != idx.dimensions {
			return fmt.Errorf("entry %d has %d dimensions, index expects %d: %w",
				i, len(e.Embedding), idx.dimensions, domain.ErrDimensionMismatch)
		}
	}

	for _, e := range batch {
		idx.entries = append(idx.entries, entry{
			IndexEntry: e,
			norm:       vectorNorm(e.Embedding),
		})
	}
	return nil
}

// Search returns the k most similar entries, ranked by cosine
// similarity descending. Ties rank by insertion order, earliest first,
// so repeated searches are deterministic.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.entries) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d: %w",
			len(query), idx.dimensions, domain.ErrDimensionMismatch)
	}

	queryNorm := vectorNorm(query)

	type scored struct {
		pos        int
		similarity float64
	}

	scores := make([]scored, len(idx.entries))
	for i, e := range idx.entries {
		scores[i] = scored{pos: i, similarity: cosine(query, queryNorm, e)}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].similarity > scores[b].similarity
	})

	if k > len(scores) {
		k = len(scores)
	}

	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{
			Entry:      idx.entries[scores[i].pos].IndexEntry,
			Similarity: scores[i].similarity,
		}
	}
	return hits, nil
}

// Len returns the number of stored entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimensions returns the vector size the index was created with.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Model returns the embedding model name recorded for this index.
func (idx *Index) Model() string {
	return idx.model
}

// Dir returns the persistence directory.
func (idx *Index) Dir() string {
	return idx.dir
}

// Close releases resources. The flat index holds none beyond memory.
func (idx *Index) Close() error {
	return nil
}

// cosine computes cosine similarity between the query and a stored
// entry, reusing precomputed norms. Zero vectors score zero.
func cosine(query []float32, queryNorm float64, e entry) float64 {
	if queryNorm == 0 || e.norm == 0 {
		return 0
	}

	var dot float64
	for i, q := range query {
		dot += float64(q) * float64(e.Embedding[i])
	}
	return dot / (queryNorm * e.norm)
}

// vectorNorm computes the Euclidean norm.
func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
