package driving

import (
	"context"
	"time"
)

// IndexBuilder constructs a persisted vector index from complaint data.
type IndexBuilder interface {
	// BuildFromRecords runs the raw-text pipeline: stream records,
	// optionally downsample (stratified by product), chunk, embed, and
	// batch-insert into a fresh index, then persist it atomically to the
	// target directory. A stale index at the target is replaced, never
	// merged.
	BuildFromRecords(ctx context.Context) (*BuildReport, error)

	// IngestPrecomputed runs the pre-embedded pipeline: validate the
	// source (all three columns present, row counts matching) before any
	// insertion, then batch-insert rows directly and persist atomically.
	IngestPrecomputed(ctx context.Context) (*BuildReport, error)
}

// BuildReport summarises a completed build run.
type BuildReport struct {
	// RunID uniquely identifies the build run.
	RunID string

	// Records is the number of complaint records used (post-sampling).
	// Zero for pre-computed ingestion.
	Records int

	// Entries is the number of index entries written.
	Entries int

	// Batches is the number of insert batches executed.
	Batches int

	// Sampled is true when stratified sampling reduced the candidate set.
	Sampled bool

	// Duration is the wall-clock build time.
	Duration time.Duration

	// IndexDir is the final persisted location.
	IndexDir string
}
