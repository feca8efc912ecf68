package memory

import "context"

// Metadata keys attached to every stored memory. Any persistent backing
// store must preserve these field-for-field for retrieval correctness.
const (
	MetaType           = "type"
	MetaRole           = "role"
	MetaTimestamp      = "timestamp"
	MetaSessionID      = "session_id"
	MetaEmbeddingModel = "embedding_model"

	// TypeEpisodic marks a stored record of a single past utterance or
	// response, as opposed to generalized knowledge.
	TypeEpisodic = "episodic"
)

// Record is one retrieved memory: the stored document, its metadata, and the
// vector distance to the query (lower = more relevant). Records are produced
// only by retrieval and never mutated afterwards.
type Record struct {
	Document string
	Metadata map[string]string
	Distance float32
}

// Relevance derives a relevance score from the distance (1 - distance).
func (r Record) Relevance() float32 {
	return 1 - r.Distance
}

// QueryResult is a raw nearest-neighbor hit from a Store.
type QueryResult struct {
	Document string
	Metadata map[string]string
	Distance float32
}

// Store is the vector storage backend: an append-only collection of embedded
// documents supporting insertion and nearest-neighbor queries. Records are
// never updated in place; implementations must tolerate concurrent inserts
// and reads from multiple turns without corrupting individual records.
//
// Implementations: ChromemStore (embedded, local).
type Store interface {
	// Insert adds a document with its embedding and metadata under id.
	Insert(ctx context.Context, id string, vector []float32, document string, metadata map[string]string) error

	// Query returns up to k nearest neighbors of vector, ordered by
	// ascending distance. A non-nil filter restricts results to documents
	// whose metadata matches every key/value pair.
	Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]QueryResult, error)
}

// Embedder converts text to a fixed-length vector.
// Implementations: MockEmbedder (testing), ONNXEmbedder (local model),
// CachedEmbedder (decorator).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
