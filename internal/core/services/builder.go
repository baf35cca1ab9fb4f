package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driving"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

// Ensure BuilderService implements the interface.
var _ driving.IndexBuilder = (*BuilderService)(nil)

// BuilderService constructs a persisted vector index from complaint
// data. It supports two modes: building from raw narratives (chunk and
// embed locally) and ingesting pre-computed embedding rows. Both modes
// insert in fixed-size batches, creating the index with the first batch
// and appending every later one, and persist atomically only when the
// whole run succeeds.
type BuilderService struct {
	factory  driven.IndexFactory
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	indexDir string
	cfg      domain.BuildSettings
	limiter  *rate.Limiter

	source      driven.ComplaintSource
	precomputed driven.PrecomputedSource
}

// NewBuilderService creates a new index builder.
// The embedder and chunker are only required for BuildFromRecords;
// pre-computed ingestion works without them. Zero batch sizes fall back
// to defaults.
func NewBuilderService(
	factory driven.IndexFactory,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	indexDir string,
	cfg domain.BuildSettings,
) *BuilderService {
	defaults := domain.DefaultAppSettings().Build
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.IngestBatchSize <= 0 {
		cfg.IngestBatchSize = defaults.IngestBatchSize
	}

	var limiter *rate.Limiter
	if cfg.EmbedRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRequestsPerSecond), 1)
	}

	return &BuilderService{
		factory:  factory,
		embedder: embedder,
		chunker:  chunker,
		indexDir: indexDir,
		cfg:      cfg,
		limiter:  limiter,
	}
}

// SetSource sets the complaint source for raw-text builds.
func (s *BuilderService) SetSource(source driven.ComplaintSource) {
	s.source = source
}

// SetPrecomputedSource sets the source for pre-embedded ingestion.
func (s *BuilderService) SetPrecomputedSource(source driven.PrecomputedSource) {
	s.precomputed = source
}

// BuildFromRecords streams complaint records, optionally downsamples
// them stratified by product, chunks and embeds the narratives, and
// writes a fresh index bundle to the target directory.
func (s *BuilderService) BuildFromRecords(ctx context.Context) (*driving.BuildReport, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no complaint source configured: %w", domain.ErrConfiguration)
	}
	if s.chunker == nil {
		return nil, fmt.Errorf("no chunker configured: %w", domain.ErrConfiguration)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("building from records requires an embedding service: %w",
			domain.ErrEmbeddingUnavailable)
	}

	// Any early return must unblock the source's producer goroutine,
	// which only exits on a channel send or ctx.Done().
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Section("Index Build")
	start := time.Now()
	runID := uuid.NewString()
	logger.Debug("Run %s: chunk_size=%d overlap=%d batch_size=%d",
		runID, s.cfg.ChunkSize, s.cfg.ChunkOverlap, s.cfg.BatchSize)

	count, err := s.source.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	logger.Info("Source holds %d records with narratives", count)

	ins := &batchInserter{
		factory:    s.factory,
		dir:        s.indexDir,
		model:      s.embedder.ModelName(),
		dimensions: s.embedder.Dimensions(),
	}
	defer ins.close()

	// Chunks buffered until a full embedding batch accumulates.
	pending := make([]domain.Chunk, 0, s.cfg.BatchSize)

	processRecord := func(rec domain.ComplaintRecord) error {
		chunks, err := s.chunker.Split(ctx, rec)
		if err != nil {
			return fmt.Errorf("chunk record %s: %w", rec.ID, err)
		}
		pending = append(pending, chunks...)

		for len(pending) >= s.cfg.BatchSize {
			batch := make([]domain.Chunk, s.cfg.BatchSize)
			copy(batch, pending)
			pending = append(pending[:0], pending[s.cfg.BatchSize:]...)
			if err := s.embedAndInsert(ctx, ins, batch); err != nil {
				return err
			}
		}
		return nil
	}

	sampled := s.cfg.SampleSize > 0 && count > s.cfg.SampleSize
	records := 0

	if sampled {
		// Sampling needs the whole candidate set in memory to compute
		// per-product fractions.
		all, err := s.collectRecords(ctx)
		if err != nil {
			return nil, err
		}
		selection := stratifiedSample(all, s.cfg.SampleSize, s.cfg.SampleSeed)
		logger.Info("Stratified sample: %d of %d records (seed %d)",
			len(selection), len(all), s.cfg.SampleSeed)

		for _, rec := range selection {
			if err := processRecord(rec); err != nil {
				return nil, err
			}
			records++
		}
	} else {
		batches, errs := s.source.Stream(ctx, s.cfg.BatchSize)
		for batch := range batches {
			for _, rec := range batch {
				if err := processRecord(rec); err != nil {
					return nil, err
				}
				records++
			}
		}
		if err := <-errs; err != nil {
			return nil, fmt.Errorf("stream records: %w", err)
		}
	}

	// Flush the final partial batch.
	if err := s.embedAndInsert(ctx, ins, pending); err != nil {
		return nil, err
	}

	if ins.index == nil {
		return nil, fmt.Errorf("no narratives to index: %w", domain.ErrEmptyInput)
	}

	if err := ins.index.Persist(ctx); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	report := &driving.BuildReport{
		RunID:    runID,
		Records:  records,
		Entries:  ins.entries,
		Batches:  ins.batches,
		Sampled:  sampled,
		Duration: time.Since(start),
		IndexDir: s.indexDir,
	}
	logger.Info("Build complete: %d records, %d entries, %d batches in %s",
		report.Records, report.Entries, report.Batches, report.Duration.Round(time.Millisecond))

	return report, nil
}

// IngestPrecomputed validates the pre-embedded source in full, then
// batch-inserts its rows directly and persists the index bundle. No
// index mutation happens before validation passes.
func (s *BuilderService) IngestPrecomputed(ctx context.Context) (*driving.BuildReport, error) {
	if s.precomputed == nil {
		return nil, fmt.Errorf("no pre-computed source configured: %w", domain.ErrConfiguration)
	}

	// Any early return must unblock the source's producer goroutine,
	// which only exits on a channel send or ctx.Done().
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Section("Pre-computed Ingestion")
	start := time.Now()
	runID := uuid.NewString()

	total, err := s.precomputed.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("validate pre-computed source: %w", err)
	}
	logger.Info("Validated %d pre-embedded rows", total)

	// Dimensions come from the first batch; the validation pass already
	// guaranteed they are consistent across rows.
	ins := &batchInserter{
		factory: s.factory,
		dir:     s.indexDir,
		model:   s.precomputedModel(),
	}
	defer ins.close()

	batches, errs := s.precomputed.Stream(ctx, s.cfg.IngestBatchSize)
	for batch := range batches {
		entries := make([]domain.IndexEntry, len(batch))
		for i, row := range batch {
			entries[i] = row.Entry()
		}
		if err := ins.insert(ctx, entries); err != nil {
			return nil, err
		}
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("stream rows: %w", err)
	}

	if ins.index == nil {
		return nil, fmt.Errorf("no rows to ingest: %w", domain.ErrEmptyInput)
	}

	if err := ins.index.Persist(ctx); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	report := &driving.BuildReport{
		RunID:    runID,
		Entries:  ins.entries,
		Batches:  ins.batches,
		Duration: time.Since(start),
		IndexDir: s.indexDir,
	}
	logger.Info("Ingestion complete: %d entries, %d batches in %s",
		report.Entries, report.Batches, report.Duration.Round(time.Millisecond))

	return report, nil
}

// collectRecords drains the source into memory.
func (s *BuilderService) collectRecords(ctx context.Context) ([]domain.ComplaintRecord, error) {
	var all []domain.ComplaintRecord
	batches, errs := s.source.Stream(ctx, s.cfg.BatchSize)
	for batch := range batches {
		all = append(all, batch...)
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("stream records: %w", err)
	}
	return all, nil
}

// embedAndInsert embeds one batch of chunks and inserts the resulting
// entries. Embedding calls are paced by the configured rate limiter.
func (s *BuilderService) embedAndInsert(ctx context.Context, ins *batchInserter, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embed batch of %d chunks: %w", domain.ErrIngestion, len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedding returned %d vectors for %d chunks",
			domain.ErrIngestion, len(vectors), len(chunks))
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{
			Embedding: vectors[i],
			Content:   c.Content,
			Metadata:  c.Metadata,
		}
	}

	return ins.insert(ctx, entries)
}

// precomputedModel names the embedding model recorded in the manifest
// for pre-computed rows. The rows themselves carry no model name, so
// the configured embedder's is used when one is wired.
func (s *BuilderService) precomputedModel() string {
	if s.embedder != nil {
		return s.embedder.ModelName()
	}
	return "precomputed"
}

// batchInserter drives the index's two-phase insert protocol: the first
// batch creates the index, every later batch appends. The index is
// created lazily so pre-computed ingestion can take its dimensionality
// from the first row.
type batchInserter struct {
	factory    driven.IndexFactory
	dir        string
	model      string
	dimensions int // zero: derive from the first batch

	index   driven.VectorIndex
	batches int
	entries int
}

func (b *batchInserter) insert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if b.index == nil {
		dims := b.dimensions
		if dims == 0 {
			dims = len(entries[0].Embedding)
		}
		index, err := b.factory.New(b.dir, b.model, dims)
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		b.index = index

		if err := b.index.Create(ctx, entries); err != nil {
			return fmt.Errorf("%w: initial batch: %w", domain.ErrIngestion, err)
		}
	} else {
		if err := b.index.Append(ctx, entries); err != nil {
			return fmt.Errorf("%w: batch %d: %w", domain.ErrIngestion, b.batches+1, err)
		}
	}

	b.batches++
	b.entries += len(entries)
	logger.Debug("Inserted batch %d (%d entries, %d total)", b.batches, len(entries), b.entries)
	return nil
}

func (b *batchInserter) close() {
	if b.index != nil {
		_ = b.index.Close()
	}
}
