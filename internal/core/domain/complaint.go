package domain

// ComplaintRecord is one raw consumer complaint as loaded from the
// processed export. It is the source of truth for all derived chunks
// and is never mutated after loading.
type ComplaintRecord struct {
	// ID is the complaint identifier assigned by the regulator.
	ID string

	// Product is the financial product category (e.g. "Credit card").
	Product string

	// Issue is the issue category reported by the consumer.
	Issue string

	// Company is the company the complaint was filed against.
	Company string

	// DateReceived is the date the complaint was received, as a string
	// in whatever format the export uses.
	DateReceived string

	// Narrative is the cleaned free-text complaint narrative.
	Narrative string
}

// ChunkMetadata is the fixed provenance schema carried by every chunk.
// A typed struct rather than an open-ended map so missing fields are
// caught when records are loaded, not when results are rendered.
type ChunkMetadata struct {
	// ComplaintID refers to the originating ComplaintRecord.
	ComplaintID string `json:"complaint_id"`

	// Product is the parent record's product category.
	Product string `json:"product"`

	// Issue is the parent record's issue category.
	Issue string `json:"issue"`

	// Company is the parent record's company.
	Company string `json:"company"`

	// Date is the parent record's received date.
	Date string `json:"date"`

	// ChunkIndex is the zero-based position of this chunk within its
	// parent narrative, contiguous in emission order.
	ChunkIndex int `json:"chunk_index"`
}

// MetadataFor derives chunk metadata from a parent record.
func MetadataFor(record ComplaintRecord, chunkIndex int) ChunkMetadata {
	return ChunkMetadata{
		ComplaintID: record.ID,
		Product:     record.Product,
		Issue:       record.Issue,
		Company:     record.Company,
		Date:        record.DateReceived,
		ChunkIndex:  chunkIndex,
	}
}

// Chunk is a bounded-length text segment derived from one complaint
// narrative. Created once at build time and never mutated.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// Metadata links the chunk back to its parent record.
	Metadata ChunkMetadata
}

// IndexEntry is the durable unit stored in the vector index:
// one embedding vector plus the chunk text and its provenance.
// Entries are append-only; no update or delete path exists.
type IndexEntry struct {
	// Embedding is the fixed-length vector for Content.
	Embedding []float32

	// Content is the chunk text that was embedded.
	Content string

	// Metadata is the chunk provenance.
	Metadata ChunkMetadata
}

// EmbeddedRow is one row of a pre-computed embedding export:
// document text, its embedding vector, and per-row metadata.
type EmbeddedRow struct {
	// Document is the chunk text.
	Document string `json:"document"`

	// Embedding is the pre-computed vector.
	Embedding []float32 `json:"embedding"`

	// Metadata is the chunk provenance.
	Metadata ChunkMetadata `json:"metadata"`
}

// Entry converts the row to its index representation.
func (r EmbeddedRow) Entry() IndexEntry {
	return IndexEntry{
		Embedding: r.Embedding,
		Content:   r.Document,
		Metadata:  r.Metadata,
	}
}
