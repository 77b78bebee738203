// Package sqlite provides an ArticleStore backed by SQLite.
//
// Embeddings are stored as little-endian float32 blobs on the chunk
// rows; vector search is an exact cosine-similarity scan over all
// stored embeddings, which is well within budget for a personal
// literature library.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArticleStore = (*Store)(nil)

// Store is a SQLite-backed ArticleStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store in the given data directory.
// If dataDir is empty, defaults to ~/.medsearch/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".medsearch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// WAL mode for concurrent readers during ingestion.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
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

// SaveArticle stores or updates an article.
func (s *Store) SaveArticle(ctx context.Context, article *domain.Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (id, title, authors, journal, year, source_path, full_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			journal = excluded.journal,
			year = excluded.year,
			source_path = excluded.source_path,
			full_text = excluded.full_text
	`, article.ID, article.Title, article.Authors, article.Journal,
		article.Year, article.SourcePath, article.FullText, article.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving article: %w", err)
	}
	return nil
}

// SaveChunks stores chunks with their embeddings.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, article_id, position, content, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		_, err := stmt.ExecContext(ctx, chunk.ID, chunk.ArticleID,
			chunk.Position, chunk.Content, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetArticle retrieves an article by ID.
func (s *Store) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, authors, journal, year, source_path, full_text, created_at
		FROM articles WHERE id = ?
	`, id)

	var a domain.Article
	err := row.Scan(&a.ID, &a.Title, &a.Authors, &a.Journal, &a.Year,
		&a.SourcePath, &a.FullText, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning article: %w", err)
	}
	return &a, nil
}

// ListArticles returns all articles, newest first.
func (s *Store) ListArticles(ctx context.Context) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, authors, journal, year, source_path, full_text, created_at
		FROM articles ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Authors, &a.Journal, &a.Year,
			&a.SourcePath, &a.FullText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// DeleteArticle removes an article; chunks cascade.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAllChunks returns every chunk with article metadata, in a
// stable (article creation, chunk position) order.
func (s *Store) ListAllChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.article_id, c.position, c.content, c.embedding,
		       a.title, a.authors, a.year
		FROM chunks c
		JOIN articles a ON c.article_id = a.id
		ORDER BY a.created_at, a.id, c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// VectorSearch scans all stored embeddings and returns the k most
// cosine-similar chunks, best first.
func (s *Store) VectorSearch(ctx context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}

	chunks, err := s.ListAllChunks(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) != len(embedding) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Chunk:      chunk,
			Similarity: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats reports article and chunk counts.
func (s *Store) Stats(ctx context.Context) (domain.LibraryStats, error) {
	var stats domain.LibraryStats

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles")
	if err := row.Scan(&stats.Articles); err != nil {
		return stats, fmt.Errorf("counting articles: %w", err)
	}

	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&stats.Chunks); err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}

	return stats, nil
}

// ==================== Helper Functions ====================

// scanChunks reads chunk rows hydrated with article metadata.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embedding []byte
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Position, &c.Content,
			&embedding, &c.Title, &c.Authors, &c.Year); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(embedding)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// cosineSimilarity computes the cosine of the angle between two
// equal-length vectors, 0 when either has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
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
