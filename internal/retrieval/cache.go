package retrieval

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// embeddingCache persists document embeddings in SQLite, keyed by code and
// content hash, so rebuilding the index over an unchanged reference set does
// not re-embed every document.
type embeddingCache struct {
	db *sql.DB
}

func openCache(dbPath string) (*embeddingCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	c := &embeddingCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("embedding cache migrate: %w", err)
	}
	return c, nil
}

func (c *embeddingCache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS embeddings (
			code         TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			embedding    BLOB NOT NULL,
			dimensions   INTEGER NOT NULL
		)
	`)
	return err
}

func (c *embeddingCache) get(code, contentHash string) ([]float32, bool) {
	row := c.db.QueryRow(`
		SELECT embedding, dimensions FROM embeddings
		WHERE code = ? AND content_hash = ?
	`, code, contentHash)

	var blob []byte
	var dims int
	if err := row.Scan(&blob, &dims); err != nil {
		return nil, false
	}
	return blobToFloat32(blob, dims), true
}

func (c *embeddingCache) put(code, contentHash string, vec []float32) error {
	_, err := c.db.Exec(`
		INSERT INTO embeddings (code, content_hash, embedding, dimensions)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			content_hash=excluded.content_hash,
			embedding=excluded.embedding,
			dimensions=excluded.dimensions
	`, code, contentHash, float32ToBlob(vec), len(vec))
	return err
}

func (c *embeddingCache) close() error {
	return c.db.Close()
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// --- serialization helpers ---

func float32ToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobToFloat32(b []byte, dims int) []float32 {
	v := make([]float32, dims)
	for i := 0; i < dims && i*4+4 <= len(b); i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
