package csvsource

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// Writer writes complaint records to a CSV file in the same column
// layout Source reads, so preprocessed output feeds straight back into
// a build.
type Writer struct {
	f     *os.File
	w     *csv.Writer
	count int
}

// NewWriter creates the output file, truncating any previous content,
// and writes the header row.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(requiredColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return &Writer{f: f, w: w}, nil
}

// Write appends one record.
func (w *Writer) Write(record domain.ComplaintRecord) error {
	err := w.w.Write([]string{
		record.ID,
		record.Product,
		record.Issue,
		record.Company,
		record.DateReceived,
		record.Narrative,
	})
	if err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
