package flat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// Load reads a persisted index bundle from dir. A missing bundle
// returns domain.ErrIndexNotFound. The loaded index is Initialised and
// ready for Search and Append.
func Load(ctx context.Context, dir string) (*Index, error) {
	m, err := readManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}

	idx, err := newIndex(dir, m.Model, m.Dimensions)
	if err != nil {
		return nil, err
	}

	entries, err := readEntries(ctx, filepath.Join(dir, entriesFile))
	if err != nil {
		return nil, err
	}

	if len(entries) != m.Count {
		return nil, fmt.Errorf("index bundle holds %d entries, manifest says %d: %w",
			len(entries), m.Count, domain.ErrIndexNotFound)
	}

	if err := idx.insert(entries); err != nil {
		return nil, err
	}
	idx.created = true

	return idx, nil
}

// readManifest parses the bundle descriptor.
func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no index bundle at %s: %w",
				filepath.Dir(path), domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if m.Dimensions <= 0 {
		return nil, fmt.Errorf("manifest has invalid dimensions %d: %w",
			m.Dimensions, domain.ErrConfiguration)
	}
	return &m, nil
}

// readEntries loads all entries from the bundle database in insertion
// order.
func readEntries(ctx context.Context, path string) ([]domain.IndexEntry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no entries database at %s: %w", path, domain.ErrIndexNotFound)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening entries database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT content, metadata, embedding FROM entries ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var (
			e            domain.IndexEntry
			metadataJSON string
			blob         []byte
		)
		if err := rows.Scan(&e.Content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling entry metadata: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}
