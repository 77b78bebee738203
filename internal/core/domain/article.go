package domain

import "time"

// Article represents an ingested piece of clinical literature.
// It is the canonical representation after text extraction and
// metadata detection.
type Article struct {
	// ID is the unique identifier for the article.
	ID string

	// Title is the detected or filename-derived title.
	Title string

	// Authors is the detected author list, empty if unknown.
	Authors string

	// Journal is the detected journal name, empty if unknown.
	Journal string

	// Year is the detected publication year, 0 if unknown.
	Year int

	// SourcePath is the path of the file the article was ingested from.
	SourcePath string

	// FullText is the complete extracted text before chunking.
	FullText string

	// CreatedAt is when the article was first ingested.
	CreatedAt time.Time
}

// Chunk represents a searchable passage within an article.
// Articles are split into overlapping chunks for granular retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ArticleID links to the parent Article.
	ArticleID string

	// Position is the 0-based ordinal position within the article.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Title, Authors and Year are denormalised copies of the parent
	// article's metadata, carried for display and citation only.
	Title   string
	Authors string
	Year    int
}

// LibraryStats summarises the current state of the article library.
type LibraryStats struct {
	// Articles is the number of ingested articles.
	Articles int

	// Chunks is the number of indexed chunks.
	Chunks int
}
