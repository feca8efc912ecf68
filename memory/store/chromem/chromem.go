// Package chromem implements memory.Store on chromem-go, a pure Go embedded
// vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/soulstice-ai/soulstice-go/memory"
)

// DefaultCollection is the collection all episodic memories live in. Session
// scoping happens through metadata filtering, not separate collections, so
// cross-session retrieval stays a single query.
const DefaultCollection = "soulstice_memory"

// Config configures the chromem-backed store.
type Config struct {
	// Path is the directory for persistent storage. Empty means in-memory
	// only (useful for tests).
	Path string

	// Compress enables gzip compression for persisted data.
	Compress bool

	// Collection overrides the default collection name.
	Collection string
}

// ChromemStore wraps a chromem-go collection as a memory.Store. chromem-go
// handles its own locking, so the store is safe for concurrent inserts and
// queries from multiple turns.
type ChromemStore struct {
	db  *chromem.DB
	col *chromem.Collection
}

// New creates a ChromemStore. With a non-empty Path the database persists
// across restarts; otherwise everything stays in memory.
func New(cfg Config) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if cfg.Path != "" {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("create persistent chromem DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}

	// No embedding func: callers always provide vectors directly.
	col, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", name, err)
	}

	return &ChromemStore{db: db, col: col}, nil
}

// Insert adds a document with its embedding and metadata.
func (s *ChromemStore) Insert(ctx context.Context, id string, vector []float32, document string, metadata map[string]string) error {
	err := s.col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   document,
		Embedding: vector,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	log.Printf("[CHROMEM] Stored document %s", id)
	return nil
}

// Query returns up to k nearest neighbors by cosine distance, ascending.
// chromem reports similarity, so distance is derived as 1 - similarity.
func (s *ChromemStore) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]memory.QueryResult, error) {
	// chromem rejects nResults larger than the collection, so clamp.
	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	// With a metadata filter the effective document count can be smaller
	// than the collection's, so retry with shrinking k on rejection.
	var results []chromem.Result
	for ; k >= 1; k-- {
		var err error
		results, err = s.col.QueryEmbedding(ctx, vector, k, filter, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if k == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]memory.QueryResult, 0, len(results))
	for _, res := range results {
		out = append(out, memory.QueryResult{
			Document: res.Content,
			Metadata: res.Metadata,
			Distance: 1 - res.Similarity,
		})
	}
	log.Printf("[CHROMEM] Query returned %d results", len(out))
	return out, nil
}

// isInsufficientDocsError reports whether err is chromem rejecting a result
// count larger than the available documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
