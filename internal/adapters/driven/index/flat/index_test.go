package flat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

func testEntry(id string, embedding []float32) domain.IndexEntry {
	return domain.IndexEntry{
		Embedding: embedding,
		Content:   "narrative chunk " + id,
		Metadata: domain.ChunkMetadata{
			ComplaintID: id,
			Product:     "Credit card",
			ChunkIndex:  0,
		},
	}
}

func TestFactory_New(t *testing.T) {
	factory := NewFactory()
	idx, err := factory.New(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Dimensions())
	assert.Equal(t, 0, idx.Len())
}

func TestFactory_New_InvalidDimensions(t *testing.T) {
	_, err := NewFactory().New(t.TempDir(), "all-minilm", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestIndex_AppendBeforeCreate(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	err = idx.Append(context.Background(), []domain.IndexEntry{
		testEntry("1", []float32{1, 0, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrIndexNotInitialised)
}

func TestIndex_CreateTwice(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	ctx := context.Background()
	first := []domain.IndexEntry{testEntry("1", []float32{1, 0, 0})}

	require.NoError(t, idx.Create(ctx, first))
	assert.ErrorIs(t, idx.Create(ctx, first), domain.ErrIngestion)
}

func TestIndex_CreateEmptyBatch(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	err = idx.Create(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestIndex_DimensionMismatchOnInsert(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	err = idx.Create(context.Background(), []domain.IndexEntry{
		testEntry("1", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_SearchRanking(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Create(ctx, []domain.IndexEntry{
		testEntry("orthogonal", []float32{0, 1, 0}),
		testEntry("exact", []float32{1, 0, 0}),
		testEntry("close", []float32{1, 0.2, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "exact", hits[0].Entry.Metadata.ComplaintID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "close", hits[1].Entry.Metadata.ComplaintID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_SearchTiesByInsertionOrder(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	ctx := context.Background()

	// Identical vectors score identically; earliest inserted wins.
	require.NoError(t, idx.Create(ctx, []domain.IndexEntry{
		testEntry("first", []float32{1, 1, 0}),
		testEntry("second", []float32{1, 1, 0}),
		testEntry("third", []float32{2, 2, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].Entry.Metadata.ComplaintID)
	assert.Equal(t, "second", hits[1].Entry.Metadata.ComplaintID)
	assert.Equal(t, "third", hits[2].Entry.Metadata.ComplaintID)
}

func TestIndex_SearchKLargerThanIndex(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Create(ctx, []domain.IndexEntry{
		testEntry("1", []float32{1, 0, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchQueryDimensionMismatch(t *testing.T) {
	idx, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Create(ctx, []domain.IndexEntry{
		testEntry("1", []float32{1, 0, 0}),
	}))

	_, err = idx.Search(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_PersistBeforeCreate(t *testing.T) {
	idx, err := newIndex(filepath.Join(t.TempDir(), "index"), "all-minilm", 3)
	require.NoError(t, err)

	err = idx.Persist(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotInitialised)
}

func TestIndex_PersistAndLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ctx := context.Background()

	idx, err := newIndex(dir, "all-minilm", 3)
	require.NoError(t, err)

	require.NoError(t, idx.Create(ctx, []domain.IndexEntry{
		testEntry("1", []float32{1, 0, 0}),
		testEntry("2", []float32{0, 1, 0}),
	}))
	require.NoError(t, idx.Append(ctx, []domain.IndexEntry{
		testEntry("3", []float32{0, 0, 1}),
	}))
	require.NoError(t, idx.Persist(ctx))

	loaded, err := Load(ctx, dir)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, 3, loaded.Dimensions())
	assert.Equal(t, "all-minilm", loaded.Model())

	hits, err := loaded.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "2", hits[0].Entry.Metadata.ComplaintID)
	assert.Equal(t, "narrative chunk 2", hits[0].Entry.Content)
	assert.Equal(t, "Credit card", hits[0].Entry.Metadata.Product)
}

func TestIndex_PersistReplacesStaleBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ctx := context.Background()

	stale, err := newIndex(dir, "all-minilm", 3)
	require.NoError(t, err)
	require.NoError(t, stale.Create(ctx, []domain.IndexEntry{
		testEntry("old-1", []float32{1, 0, 0}),
		testEntry("old-2", []float32{0, 1, 0}),
	}))
	require.NoError(t, stale.Persist(ctx))

	fresh, err := newIndex(dir, "all-minilm", 3)
	require.NoError(t, err)
	require.NoError(t, fresh.Create(ctx, []domain.IndexEntry{
		testEntry("new-1", []float32{0, 0, 1}),
	}))
	require.NoError(t, fresh.Persist(ctx))

	loaded, err := Load(ctx, dir)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, 1, loaded.Len())
	hits, err := loaded.Search(ctx, []float32{0, 0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new-1", hits[0].Entry.Metadata.ComplaintID)
}

func TestLoad_MissingBundle(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nowhere"))
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

// Splitting the same entries into different batch sizes must yield the
// same search results.
func TestIndex_BatchingEquivalence(t *testing.T) {
	ctx := context.Background()
	entries := []domain.IndexEntry{
		testEntry("a", []float32{1, 0, 0}),
		testEntry("b", []float32{0.9, 0.1, 0}),
		testEntry("c", []float32{0, 1, 0}),
		testEntry("d", []float32{0.5, 0.5, 0}),
		testEntry("e", []float32{0, 0, 1}),
	}

	oneShot, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)
	require.NoError(t, oneShot.Create(ctx, entries))

	batched, err := newIndex(t.TempDir(), "all-minilm", 3)
	require.NoError(t, err)
	require.NoError(t, batched.Create(ctx, entries[:2]))
	require.NoError(t, batched.Append(ctx, entries[2:4]))
	require.NoError(t, batched.Append(ctx, entries[4:]))

	query := []float32{1, 0.1, 0}
	wantHits, err := oneShot.Search(ctx, query, 5)
	require.NoError(t, err)
	gotHits, err := batched.Search(ctx, query, 5)
	require.NoError(t, err)

	require.Equal(t, len(wantHits), len(gotHits))
	for i := range wantHits {
		assert.Equal(t, wantHits[i].Entry.Metadata.ComplaintID, gotHits[i].Entry.Metadata.ComplaintID)
		assert.InDelta(t, wantHits[i].Similarity, gotHits[i].Similarity, 1e-12)
	}
}
