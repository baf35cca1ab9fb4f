package flat

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

const (
	// entriesFile is the SQLite database inside an index bundle.
	entriesFile = "entries.db"

	// manifestFile describes the bundle alongside the database.
	manifestFile = "manifest.toml"
)

// manifest is the TOML descriptor persisted with every index bundle.
type manifest struct {
	Model      string    `toml:"model"`
	Dimensions int       `toml:"dimensions"`
	Count      int       `toml:"count"`
	CreatedAt  time.Time `toml:"created_at"`
}

// Persist writes the index bundle to its directory, replacing any prior
// bundle atomically: the new bundle is staged in a sibling directory and
// renamed into place only once fully written, so a crash mid-write never
// leaves a half-built index at the target.
func (idx *Index) Persist(ctx context.Context) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.created {
		return domain.ErrIndexNotInitialised
	}

	parent := filepath.Dir(idx.dir)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return fmt.Errorf("creating index parent directory: %w", err)
	}

	staging, err := os.MkdirTemp(parent, ".staging-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := idx.writeEntries(ctx, filepath.Join(staging, entriesFile)); err != nil {
		return err
	}
	if err := idx.writeManifest(filepath.Join(staging, manifestFile)); err != nil {
		return err
	}

	if err := os.RemoveAll(idx.dir); err != nil {
		return fmt.Errorf("removing stale index: %w", err)
	}
	if err := os.Rename(staging, idx.dir); err != nil {
		return fmt.Errorf("installing index bundle: %w", err)
	}
	return nil
}

// writeEntries stores all entries into a fresh SQLite database in
// insertion order.
func (idx *Index) writeEntries(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening entries database: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE entries (
			seq INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating entries table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (seq, content, metadata, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for seq, e := range idx.entries {
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling entry metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, seq, e.Content, string(metadataJSON),
			float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// writeManifest stores the bundle descriptor.
func (idx *Index) writeManifest(path string) error {
	data, err := toml.Marshal(manifest{
		Model:      idx.model,
		Dimensions: idx.dimensions,
		Count:      len(idx.entries),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
