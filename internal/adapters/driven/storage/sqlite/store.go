// Package sqlite implements the document index on a local SQLite
// database with embedded schema migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/archon-search/archon/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentIndex = (*Store)(nil)

// Store is a SQLite-backed document index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store in the given data directory.
// If dataDir is empty, defaults to ~/.archon/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".archon", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for concurrent per-file adds and deletes during a phase
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

const chunkColumns = `chunk_id, source_path, content, position, content_hash,
	mtime_ns, byte_size, category, data_source_name, priority, embedding`

// GetBySource returns metadata for chunks with a matching source path.
func (s *Store) GetBySource(ctx context.Context, sourcePath string) ([]domain.ChunkMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, source_path, content_hash, mtime_ns, byte_size,
			category, data_source_name, priority
		FROM chunks WHERE source_path = ?
		ORDER BY position
	`, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("querying chunks by source: %w", err)
	}
	defer rows.Close()

	var metas []domain.ChunkMeta //nolint:prealloc // size unknown from query
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return metas, nil
}

// ListSourceMeta returns one representative metadata row per source
// path, using the row with the lowest position for each path.
func (s *Store) ListSourceMeta(ctx context.Context) (map[string]domain.ChunkMeta, error) {
	// Bare columns with MIN() resolve to the minimum-position row per
	// group, which SQLite guarantees for single-aggregate queries.
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, source_path, content_hash, mtime_ns, byte_size,
			category, data_source_name, priority, MIN(position)
		FROM chunks
		GROUP BY source_path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying source metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ChunkMeta)
	for rows.Next() {
		var (
			meta    domain.ChunkMeta
			mtimeNS int64
			minPos  int
		)
		if err := rows.Scan(
			&meta.ChunkID, &meta.SourcePath, &meta.ContentHash, &mtimeNS,
			&meta.ByteSize, &meta.Category, &meta.DataSourceName, &meta.Priority, &minPos,
		); err != nil {
			return nil, fmt.Errorf("scanning source metadata: %w", err)
		}
		meta.MTime = time.Unix(0, mtimeNS)
		out[meta.SourcePath] = meta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source metadata: %w", err)
	}
	return out, nil
}

// Add inserts or replaces chunks in one transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (`+chunkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			source_path = excluded.source_path,
			content = excluded.content,
			position = excluded.position,
			content_hash = excluded.content_hash,
			mtime_ns = excluded.mtime_ns,
			byte_size = excluded.byte_size,
			category = excluded.category,
			data_source_name = excluded.data_source_name,
			priority = excluded.priority,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			c.Meta.ChunkID, c.Meta.SourcePath, c.Content, c.Position,
			c.Meta.ContentHash, c.Meta.MTime.UnixNano(), c.Meta.ByteSize,
			c.Meta.Category, c.Meta.DataSourceName, c.Meta.Priority,
			float32SliceToBytes(c.Embedding),
		); err != nil {
			return fmt.Errorf("saving chunk %s: %w", c.Meta.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Delete removes chunks by ID. Unknown IDs are ignored.
func (s *Store) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(chunkIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE chunk_id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// IsEmpty reports whether the index holds no chunks.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("counting chunks: %w", err)
	}
	return count == 0, nil
}

// AllChunks returns every stored chunk, ordered by source path and position.
func (s *Store) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks
		ORDER BY source_path, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			c       domain.Chunk
			mtimeNS int64
			blob    []byte
		)
		if err := rows.Scan(
			&c.Meta.ChunkID, &c.Meta.SourcePath, &c.Content, &c.Position,
			&c.Meta.ContentHash, &mtimeNS, &c.Meta.ByteSize,
			&c.Meta.Category, &c.Meta.DataSourceName, &c.Meta.Priority, &blob,
		); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Meta.MTime = time.Unix(0, mtimeNS)
		c.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// scanMeta reads a metadata row.
func scanMeta(rows *sql.Rows) (domain.ChunkMeta, error) {
	var (
		meta    domain.ChunkMeta
		mtimeNS int64
	)
	if err := rows.Scan(
		&meta.ChunkID, &meta.SourcePath, &meta.ContentHash, &mtimeNS,
		&meta.ByteSize, &meta.Category, &meta.DataSourceName, &meta.Priority,
	); err != nil {
		return domain.ChunkMeta{}, fmt.Errorf("scanning chunk metadata: %w", err)
	}
	meta.MTime = time.Unix(0, mtimeNS)
	return meta, nil
}

// float32SliceToBytes encodes an embedding as little-endian bytes.
// Nil embeddings encode as nil so the column stays NULL.
func float32SliceToBytes(vals []float32) []byte {
	if len(vals) == 0 {
		return nil
	}
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32Slice decodes a stored embedding blob.
func bytesToFloat32Slice(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vals := make([]float32, len(buf)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals
}
