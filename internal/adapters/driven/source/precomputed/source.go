// Package precomputed streams pre-embedded rows from a JSON Lines
// export: one object per line carrying the chunk text, its embedding
// vector, and its provenance metadata.
package precomputed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.PrecomputedSource = (*Source)(nil)

// maxLineBytes bounds a single JSONL line. Embedding vectors of a few
// thousand dimensions fit comfortably.
const maxLineBytes = 16 * 1024 * 1024

// Source streams pre-embedded rows from one JSONL file.
type Source struct {
	path string
}

// New creates a precomputed source for the file at path.
func New(path string) *Source {
	return &Source{path: path}
}

// rawRow mirrors the export line shape, with pointers so a missing
// field is distinguishable from an empty one.
type rawRow struct {
	Document  *string               `json:"document"`
	Embedding *[]float32            `json:"embedding"`
	Metadata  *domain.ChunkMetadata `json:"metadata"`
}

// parse converts one export line, enforcing that all three columns are
// present and the embedding is non-empty.
func parse(lineNo int, line []byte) (domain.EmbeddedRow, error) {
	var raw rawRow
	if err := json.Unmarshal(line, &raw); err != nil {
		return domain.EmbeddedRow{}, fmt.Errorf("row %d is not valid JSON: %w: %v",
			lineNo, domain.ErrConfiguration, err)
	}

	switch {
	case raw.Document == nil:
		return domain.EmbeddedRow{}, fmt.Errorf("row %d is missing the document column: %w",
			lineNo, domain.ErrConfiguration)
	case raw.Embedding == nil || len(*raw.Embedding) == 0:
		return domain.EmbeddedRow{}, fmt.Errorf("row %d is missing the embedding column: %w",
			lineNo, domain.ErrConfiguration)
	case raw.Metadata == nil:
		return domain.EmbeddedRow{}, fmt.Errorf("row %d is missing the metadata column: %w",
			lineNo, domain.ErrConfiguration)
	}

	return domain.EmbeddedRow{
		Document:  *raw.Document,
		Embedding: *raw.Embedding,
		Metadata:  *raw.Metadata,
	}, nil
}

// scan runs fn over every non-blank line of the file.
func (s *Source) scan(ctx context.Context, fn func(lineNo int, line []byte) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening precomputed export: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readLine(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading precomputed export: %w", err)
		}

		lineNo++
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
}

// readLine reads one full line, tolerating a missing final newline. The
// length bound is enforced fragment by fragment, so an oversized line
// fails before it is ever buffered whole.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		if len(line)+len(frag) > maxLineBytes {
			return nil, fmt.Errorf("line exceeds %d bytes", maxLineBytes)
		}
		line = append(line, frag...)

		switch err {
		case nil:
			return line, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(line) > 0 {
				return line, nil
			}
			return nil, io.EOF
		default:
			return nil, err
		}
	}
}

// Validate makes a full pass over the export before any ingestion,
// checking that every row parses and carries all three columns with a
// consistent embedding dimensionality. Returns the row count.
func (s *Source) Validate(ctx context.Context) (int, error) {
	count := 0
	dimensions := 0

	err := s.scan(ctx, func(lineNo int, line []byte) error {
		row, err := parse(lineNo, line)
		if err != nil {
			return err
		}

		if dimensions == 0 {
			dimensions = len(row.Embedding)
		} else if len(row.Embedding) != dimensions {
			return fmt.Errorf("row %d has %d dimensions, previous rows have %d: %w",
				lineNo, len(row.Embedding), dimensions, domain.ErrConfiguration)
		}

		count++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, fmt.Errorf("precomputed export holds no rows: %w", domain.ErrEmptyInput)
	}
	return count, nil
}

// Dimensions returns the embedding dimensionality of the first row.
func (s *Source) Dimensions(ctx context.Context) (int, error) {
	dimensions := 0
	err := s.scan(ctx, func(lineNo int, line []byte) error {
		row, err := parse(lineNo, line)
		if err != nil {
			return err
		}
		dimensions = len(row.Embedding)
		return io.EOF
	})
	if err != nil && err != io.EOF {
		return 0, err
	}
	if dimensions == 0 {
		return 0, fmt.Errorf("precomputed export holds no rows: %w", domain.ErrEmptyInput)
	}
	return dimensions, nil
}

// Stream reads rows in batches of up to batchSize. Same channel
// contract as the complaint source: rows channel closes on exhaustion,
// failures go to the error channel.
func (s *Source) Stream(ctx context.Context, batchSize int) (<-chan []domain.EmbeddedRow, <-chan error) {
	rowsCh := make(chan []domain.EmbeddedRow)
	errsCh := make(chan error, 1)

	if batchSize <= 0 {
		batchSize = 1
	}

	go func() {
		defer close(rowsCh)
		defer close(errsCh)

		batch := make([]domain.EmbeddedRow, 0, batchSize)

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			select {
			case rowsCh <- batch:
				batch = make([]domain.EmbeddedRow, 0, batchSize)
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.scan(ctx, func(lineNo int, line []byte) error {
			row, err := parse(lineNo, line)
			if err != nil {
				return err
			}

			batch = append(batch, row)
			if len(batch) == batchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			errsCh <- err
			return
		}

		if err := flush(); err != nil {
			errsCh <- err
		}
	}()

	return rowsCh, errsCh
}
