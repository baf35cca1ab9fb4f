package precomputed

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

const sampleExport = `{"document":"chunk one","embedding":[0.1,0.2,0.3],"metadata":{"complaint_id":"1001","product":"Credit card","issue":"Fees","company":"Acme","date":"2023-01-01","chunk_index":0}}
{"document":"chunk two","embedding":[0.4,0.5,0.6],"metadata":{"complaint_id":"1001","product":"Credit card","issue":"Fees","company":"Acme","date":"2023-01-01","chunk_index":1}}

{"document":"chunk three","embedding":[0.7,0.8,0.9],"metadata":{"complaint_id":"1002","product":"Mortgage","issue":"Escrow","company":"Zenith","date":"2023-02-01","chunk_index":0}}
`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSource_Validate(t *testing.T) {
	src := New(writeExport(t, sampleExport))

	count, err := src.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSource_Validate_MissingColumn(t *testing.T) {
	cases := map[string]string{
		"no document":  `{"embedding":[0.1],"metadata":{"complaint_id":"1"}}`,
		"no embedding": `{"document":"text","metadata":{"complaint_id":"1"}}`,
		"no metadata":  `{"document":"text","embedding":[0.1]}`,
		"empty vector": `{"document":"text","embedding":[],"metadata":{"complaint_id":"1"}}`,
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			src := New(writeExport(t, line+"\n"))
			_, err := src.Validate(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestSource_Validate_InconsistentDimensions(t *testing.T) {
	content := `{"document":"a","embedding":[0.1,0.2],"metadata":{"complaint_id":"1"}}
{"document":"b","embedding":[0.1],"metadata":{"complaint_id":"2"}}
`
	src := New(writeExport(t, content))
	_, err := src.Validate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSource_Validate_MalformedJSON(t *testing.T) {
	src := New(writeExport(t, "{not json}\n"))
	_, err := src.Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSource_Validate_EmptyFile(t *testing.T) {
	src := New(writeExport(t, "\n\n"))
	_, err := src.Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestSource_Dimensions(t *testing.T) {
	src := New(writeExport(t, sampleExport))

	dimensions, err := src.Dimensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, dimensions)
}

func TestSource_Stream(t *testing.T) {
	src := New(writeExport(t, sampleExport))

	rowsCh, errsCh := src.Stream(context.Background(), 2)

	var batches [][]domain.EmbeddedRow
	for batch := range rowsCh {
		batches = append(batches, batch)
	}
	require.NoError(t, <-errsCh)

	require.Len(t, batches, 2)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 1)

	first := batches[0][0]
	assert.Equal(t, "chunk one", first.Document)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, first.Embedding)
	assert.Equal(t, "1001", first.Metadata.ComplaintID)
	assert.Equal(t, 0, first.Metadata.ChunkIndex)

	entry := first.Entry()
	assert.Equal(t, first.Document, entry.Content)
	assert.Equal(t, first.Embedding, entry.Embedding)
}

func TestSource_Stream_PropagatesRowErrors(t *testing.T) {
	src := New(writeExport(t, `{"document":"a","embedding":[0.1],"metadata":{}}`+"\n{bad}\n"))

	rowsCh, errsCh := src.Stream(context.Background(), 10)
	for range rowsCh {
	}
	assert.ErrorIs(t, <-errsCh, domain.ErrConfiguration)
}

func TestSource_MissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope.jsonl"))
	_, err := src.Validate(context.Background())
	assert.Error(t, err)
}

func TestReadLine_ReassemblesAcrossBufferFills(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("the quick brown fox\nlast"), 16)

	line, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("the quick brown fox\n"), line)

	line, err = readLine(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), line)

	_, err = readLine(r)
	assert.Equal(t, io.EOF, err)
}

func TestReadLine_OversizedLine(t *testing.T) {
	long := bytes.Repeat([]byte("a"), maxLineBytes+1)

	t.Run("terminated", func(t *testing.T) {
		r := bufio.NewReaderSize(bytes.NewReader(append(long, '\n')), 64*1024)
		_, err := readLine(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})

	t.Run("unterminated at end of file", func(t *testing.T) {
		r := bufio.NewReaderSize(bytes.NewReader(long), 64*1024)
		_, err := readLine(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}
