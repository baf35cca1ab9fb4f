package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfiguration indicates invalid or inconsistent configuration:
	// missing required columns, an index built with a different embedding
	// dimensionality than the active embedder, or a missing index
	// location. Fatal - surfaced immediately, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion indicates a batch insert failed mid-build. Fatal to
	// the current build; nothing is persisted to the final location.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRetrieval indicates the embedding service or index search
	// failed at query time. Recovered at the query service boundary
	// into a degraded answer.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the language model call failed or timed
	// out. Recovered into a degraded answer distinct from a grounded
	// "no information found" response.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyInput indicates blank or empty input: an empty question,
	// narrative, or candidate set. Handled as an empty-result path,
	// never fatal.
	ErrEmptyInput = errors.New("empty input")

	// ErrIndexNotInitialised indicates Append was called on an index in
	// the Empty state. Create with a non-empty first batch must happen
	// first; calling Append earlier is a programming error.
	ErrIndexNotInitialised = errors.New("index not initialised")

	// ErrIndexNotFound indicates no persisted index exists at the
	// configured location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrDimensionMismatch indicates a vector's dimensionality does not
	// match the index. Mixing embedding models in one index is an error
	// condition, never silently tolerated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
