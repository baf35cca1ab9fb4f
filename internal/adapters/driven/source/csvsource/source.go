// Package csvsource streams complaint records from CSV exports. It
// reads row by row so multi-gigabyte exports never have to fit in
// memory, and resolves columns by header name rather than position.
package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
	"github.com/creditrust-labs/crag-cli/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ComplaintSource = (*Source)(nil)

// Column headers as they appear in the consumer complaint export.
const (
	ColumnComplaintID  = "Complaint ID"
	ColumnProduct      = "Product"
	ColumnIssue        = "Issue"
	ColumnCompany      = "Company"
	ColumnDateReceived = "Date received"
	ColumnNarrative    = "Consumer complaint narrative"
)

// requiredColumns must all be present in the header row.
var requiredColumns = []string{
	ColumnComplaintID,
	ColumnProduct,
	ColumnIssue,
	ColumnCompany,
	ColumnDateReceived,
	ColumnNarrative,
}

// Source streams complaint records from one CSV file.
type Source struct {
	path     string
	products map[string]struct{}
	clean    func(string) string
}

// Option configures a Source.
type Option func(*Source)

// WithProducts restricts the stream to records whose product matches
// one of the given categories (case-insensitive).
func WithProducts(products ...string) Option {
	return func(s *Source) {
		if len(products) == 0 {
			return
		}
		s.products = make(map[string]struct{}, len(products))
		for _, p := range products {
			s.products[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
		}
	}
}

// WithCleaner runs every narrative through clean before it is emitted.
// Records whose narrative cleans down to nothing are dropped.
func WithCleaner(clean func(string) string) Option {
	return func(s *Source) {
		s.clean = clean
	}
}

// New creates a CSV complaint source for the file at path.
func New(path string, opts ...Option) *Source {
	s := &Source{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// columns maps the fields we need to their positions in one file.
type columns struct {
	id, product, issue, company, date, narrative int
}

// open opens the file and resolves the required columns from the
// header row. A missing column is a configuration error.
func (s *Source) open() (*os.File, *csv.Reader, columns, error) {
	var cols columns

	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, cols, fmt.Errorf("opening complaint export: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, nil, cols, fmt.Errorf("reading export header: %w", err)
	}

	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.TrimSpace(name)] = i
	}

	for _, name := range requiredColumns {
		if _, ok := byName[name]; !ok {
			f.Close()
			return nil, nil, cols, fmt.Errorf("export is missing column %q: %w",
				name, domain.ErrConfiguration)
		}
	}

	cols = columns{
		id:        byName[ColumnComplaintID],
		product:   byName[ColumnProduct],
		issue:     byName[ColumnIssue],
		company:   byName[ColumnCompany],
		date:      byName[ColumnDateReceived],
		narrative: byName[ColumnNarrative],
	}
	return f, r, cols, nil
}

// record builds a ComplaintRecord from one CSV row, or reports that the
// row is filtered out.
func (s *Source) record(row []string, cols columns) (domain.ComplaintRecord, bool) {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	narrative := field(cols.narrative)
	if s.clean != nil {
		narrative = s.clean(narrative)
	}
	if narrative == "" {
		return domain.ComplaintRecord{}, false
	}

	product := field(cols.product)
	if s.products != nil {
		if _, ok := s.products[strings.ToLower(product)]; !ok {
			return domain.ComplaintRecord{}, false
		}
	}

	return domain.ComplaintRecord{
		ID:           field(cols.id),
		Product:      product,
		Issue:        field(cols.issue),
		Company:      field(cols.company),
		DateReceived: field(cols.date),
		Narrative:    narrative,
	}, true
}

// Stream reads records in batches of up to batchSize. The record
// channel closes on exhaustion; a read failure goes to the error
// channel and both close.
func (s *Source) Stream(ctx context.Context, batchSize int) (<-chan []domain.ComplaintRecord, <-chan error) {
	recordsCh := make(chan []domain.ComplaintRecord)
	errsCh := make(chan error, 1)

	if batchSize <= 0 {
		batchSize = 1
	}

	go func() {
		defer close(recordsCh)
		defer close(errsCh)

		f, r, cols, err := s.open()
		if err != nil {
			errsCh <- err
			return
		}
		defer f.Close()

		batch := make([]domain.ComplaintRecord, 0, batchSize)

		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			select {
			case recordsCh <- batch:
				batch = make([]domain.ComplaintRecord, 0, batchSize)
				return true
			case <-ctx.Done():
				errsCh <- ctx.Err()
				return false
			}
		}

		for {
			if err := ctx.Err(); err != nil {
				errsCh <- err
				return
			}

			row, err := r.Read()
			if err == io.EOF {
				flush()
				return
			}
			if err != nil {
				errsCh <- fmt.Errorf("reading export row: %w", err)
				return
			}

			rec, ok := s.record(row, cols)
			if !ok {
				continue
			}

			batch = append(batch, rec)
			if len(batch) == batchSize {
				if !flush() {
					return
				}
			}
		}
	}()

	return recordsCh, errsCh
}

// Count scans the file and returns the number of records Stream would
// yield, without materialising them.
func (s *Source) Count(ctx context.Context) (int, error) {
	f, r, cols, err := s.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		row, err := r.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading export row: %w", err)
		}

		if _, ok := s.record(row, cols); ok {
			count++
		}
	}
}
