package knowledge

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"math"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/compliance-cli/internal/model"
)

// SQLiteIndex implements Index on modernc.org/sqlite so a knowledge
// base survives process restarts. Similarity search loads the stored
// vectors and ranks them in-process; a single-document knowledge base
// stays small enough for that.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex opens (or creates) a SQLite index at the given path
// and configures WAL mode.
func NewSQLiteIndex(dsn string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "knowledge: open sqlite index")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "knowledge: exec %s", pragma)
		}
	}

	if _, err := db.Exec(sqliteIndexSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "knowledge: migrate sqlite index")
	}

	return &SQLiteIndex{db: db}, nil
}

const sqliteIndexSchema = `
CREATE TABLE IF NOT EXISTS chunks (
	id            TEXT PRIMARY KEY,
	document_name TEXT NOT NULL,
	chunk_index   INTEGER NOT NULL,
	text          TEXT NOT NULL,
	embedding     BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_name);
`

// Replace evicts all stored chunks and inserts the given ones in one
// transaction.
func (s *SQLiteIndex) Replace(ctx context.Context, chunks []model.DocumentChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "knowledge: begin replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return eris.Wrap(err, "knowledge: clear chunks")
	}

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_name, chunk_index, text, embedding) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.DocumentName, c.Index, c.Text, encodeVector(c.Embedding),
		); err != nil {
			return eris.Wrapf(err, "knowledge: insert chunk %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "knowledge: commit replace")
}

// Search loads all stored chunks and ranks them against the query
// vector by cosine similarity.
func (s *SQLiteIndex) Search(ctx context.Context, vector []float32, k int) ([]model.DocumentChunk, error) {
	chunks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return rankChunks(chunks, vector, k), nil
}

// Count returns the number of stored chunks.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, eris.Wrap(err, "knowledge: count chunks")
}

// Clear removes all stored chunks.
func (s *SQLiteIndex) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return eris.Wrap(err, "knowledge: clear chunks")
}

// Close closes the underlying database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) load(ctx context.Context) ([]model.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_name, chunk_index, text, embedding FROM chunks ORDER BY chunk_index`)
	if err != nil {
		return nil, eris.Wrap(err, "knowledge: query chunks")
	}
	defer rows.Close()

	var chunks []model.DocumentChunk
	for rows.Next() {
		var c model.DocumentChunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentName, &c.Index, &c.Text, &blob); err != nil {
			return nil, eris.Wrap(err, "knowledge: scan chunk")
		}
		c.Embedding = decodeVector(blob)
		chunks = append(chunks, c)
	}
	return chunks, eris.Wrap(rows.Err(), "knowledge: iterate chunks")
}

// encodeVector packs a float32 vector as little-endian bytes.
func encodeVector(v []float32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 4*len(v)))
	for _, f := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

// decodeVector is the inverse of encodeVector.
func decodeVector(b []byte) []float32 {
	v := make([]float32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		v = append(v, math.Float32frombits(binary.LittleEndian.Uint32(b[i:i+4])))
	}
	return v
}
