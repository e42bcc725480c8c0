package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nikolajIvanov/langchain-crash-course/rag"
)

// SQLiteVectorStore persists documents and embeddings in a SQLite file.
// Queries load every row and rank in process.
type SQLiteVectorStore struct {
	db        *sql.DB
	tableName string
}

var _ rag.VectorStore = (*SQLiteVectorStore)(nil)

// SQLiteOptions configures the database file.
type SQLiteOptions struct {
	Path      string
	TableName string // default "documents"
}

// NewSQLiteVectorStore opens the database and creates the table when it is
// missing.
func NewSQLiteVectorStore(opts SQLiteOptions) (*SQLiteVectorStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "documents"
	}

	s := &SQLiteVectorStore{db: db, tableName: tableName}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteVectorStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL
		)
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteVectorStore) Upsert(ctx context.Context, docs []rag.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, seq, content, metadata, embedding)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM %s), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`, s.tableName, s.tableName)

	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document has no id")
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", d.ID)
		}
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata of %s: %w", d.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, d.ID, d.Content, string(meta), encodeVector(d.Embedding)); err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *SQLiteVectorStore) Query(ctx context.Context, vector []float32, k int, minScore float64) ([]rag.SearchResult, error) {
	if k <= 0 {
		return nil, rag.ErrInvalidK
	}
	docs, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return rag.Rank(docs, vector, k, minScore)
}

// Count returns the number of stored documents.
func (s *SQLiteVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.tableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func (s *SQLiteVectorStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteVectorStore) all(ctx context.Context) ([]rag.Document, error) {
	query := fmt.Sprintf(`SELECT id, content, metadata, embedding FROM %s ORDER BY seq ASC`, s.tableName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []rag.Document
	for rows.Next() {
		var (
			d    rag.Document
			meta string
			blob []byte
		)
		if err := rows.Scan(&d.ID, &d.Content, &meta, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &d.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", d.ID, err)
		}
		if d.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
