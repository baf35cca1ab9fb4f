// Package chunker provides a recursive character-splitting chunker.
// Narratives are split preferring paragraph boundaries, then lines,
// then sentences, then words, falling back to a hard character cut,
// and reassembled into bounded chunks with a configured overlap.
package chunker

import (
	"context"
	"strings"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// separators is the split preference order. Each separator stays
// attached to the text before it, so concatenating the pieces
// reproduces the input exactly.
var separators = []string{"\n\n", "\n", ". ", " "}

// Processor splits narratives into bounded, overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay strictly below the chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the chunker name.
func (p *Processor) Name() string {
	return "recursive"
}

// Split produces the chunks for one record. An empty narrative yields
// no chunks and no error. ChunkIndex is contiguous from zero in
// emission order.
func (p *Processor) Split(_ context.Context, record domain.ComplaintRecord) ([]domain.Chunk, error) {
	if strings.TrimSpace(record.Narrative) == "" {
		return nil, nil
	}

	pieces := p.SplitText(record.Narrative)

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			Content:  piece,
			Metadata: domain.MetadataFor(record, i),
		}
	}

	return chunks, nil
}

// SplitText splits raw text into chunk strings without metadata.
// Exposed for callers that chunk free text outside a record.
func (p *Processor) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	return p.merge(splitUnits(text, separators, p.chunkSize))
}

// splitUnits recursively breaks text into units no longer than size,
// preferring the earliest separator in the preference order. Separators
// stay attached to the preceding unit, so the concatenation of all
// units equals the input.
func splitUnits(text string, seps []string, size int) []string {
	if runeLen(text) <= size {
		return []string{text}
	}

	if len(seps) == 0 {
		return splitRunes(text, size)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		// Separator absent; fall through to the next preference.
		return splitUnits(text, seps[1:], size)
	}

	var units []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if runeLen(part) <= size {
			units = append(units, part)
		} else {
			units = append(units, splitUnits(part, seps[1:], size)...)
		}
	}
	return units
}

// splitRunes hard-cuts text into windows of at most size runes.
// Last resort for text with no usable boundary (e.g. one huge word).
func splitRunes(text string, size int) []string {
	runes := []rune(text)
	units := make([]string, 0, (len(runes)/size)+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		units = append(units, string(runes[start:end]))
	}
	return units
}

// merge packs units into chunks of at most chunkSize characters. When a
// chunk closes, trailing units totalling at most overlap characters are
// carried into the next chunk. The chunk bound always wins over the
// overlap: a carry that would overflow the next chunk is dropped.
func (p *Processor) merge(units []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, unit := range units {
		unitLen := runeLen(unit)

		if currentLen > 0 && currentLen+unitLen > p.chunkSize {
			chunks = append(chunks, strings.Join(current, ""))

			carry, carryLen := p.carryTail(current)
			if carryLen+unitLen > p.chunkSize {
				carry, carryLen = nil, 0
			}
			current, currentLen = carry, carryLen
		}

		current = append(current, unit)
		currentLen += unitLen
	}

	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}

	return chunks
}

// carryTail returns the longest run of trailing units whose combined
// length does not exceed the overlap.
func (p *Processor) carryTail(units []string) ([]string, int) {
	var carry []string
	carryLen := 0

	for i := len(units) - 1; i >= 0; i-- {
		l := runeLen(units[i])
		if carryLen+l > p.overlap {
			break
		}
		carry = append([]string{units[i]}, carry...)
		carryLen += l
	}

	return carry, carryLen
}

func runeLen(s string) int {
	return len([]rune(s))
}
