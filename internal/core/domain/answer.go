package domain

import "strings"

// SourceDocument is one retrieval hit: a chunk that grounded an answer,
// with its provenance and similarity to the question.
type SourceDocument struct {
	// Content is the chunk text.
	Content string

	// Metadata is the chunk provenance.
	Metadata ChunkMetadata

	// Similarity is the cosine similarity to the question vector (0-1).
	Similarity float64
}

// SnippetLength is the bounded preview length used when rendering sources.
const SnippetLength = 400

// Snippet returns a bounded preview of the source content for display.
func (d SourceDocument) Snippet() string {
	content := strings.TrimSpace(d.Content)
	runes := []rune(content)
	if len(runes) <= SnippetLength {
		return content
	}
	return string(runes[:SnippetLength]) + "..."
}

// Answer is the result of one question: generated text plus the
// retrieved chunks that grounded it. Ephemeral, one per query.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the generated answer. Empty for a blank question.
	Text string

	// Sources are the retrieval hits in ranked order, for provenance.
	Sources []SourceDocument

	// Degraded is true when the answer text is a failure notice rather
	// than a grounded response. A grounded "no information found" answer
	// is NOT degraded; only retrieval or generation failures are.
	Degraded bool

	// DegradedReason describes the failure when Degraded is true.
	DegradedReason string
}

// Empty reports whether the answer carries neither text nor sources.
func (a Answer) Empty() bool {
	return a.Text == "" && len(a.Sources) == 0 && !a.Degraded
}
