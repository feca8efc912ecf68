package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soulstice-ai/soulstice-go/core"
	"github.com/soulstice-ai/soulstice-go/llm"
)

// timeNow is a variable for testing purposes (allows mocking time).
var timeNow = time.Now

// DefaultRetrievalLimit is the number of nearest neighbors fetched when the
// caller passes a non-positive limit.
const DefaultRetrievalLimit = 5

// Gateway mediates between the turn pipeline's textual needs and the Store's
// vector interface: it embeds queries and documents, converts retrieval hits
// into ranked Records, and turns interaction pairs into stored memories.
type Gateway struct {
	store     Store
	embedder  Embedder
	generator llm.Generator

	modelID       string
	sessionScoped bool
}

// Option configures the gateway.
type Option func(*Gateway)

// SessionScoped restricts retrieval to the querying session. The default is
// cross-session recall: the agent may surface context from earlier sessions.
func SessionScoped(scoped bool) Option {
	return func(g *Gateway) {
		g.sessionScoped = scoped
	}
}

// WithEmbeddingModelID sets the embedding-model identifier recorded in every
// stored memory's metadata.
func WithEmbeddingModelID(id string) Option {
	return func(g *Gateway) {
		g.modelID = id
	}
}

// NewGateway creates a Gateway over the given store and embedder. The
// generator is used only for retrieval-query synthesis and may be nil, in
// which case query building always uses the deterministic fallback.
func NewGateway(store Store, embedder Embedder, generator llm.Generator, opts ...Option) *Gateway {
	g := &Gateway{
		store:     store,
		embedder:  embedder,
		generator: generator,
		modelID:   "unknown",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EmbedOrNil embeds text, returning nil on blank input or embedder failure.
// It never returns an error; a nil vector is a degraded-context signal.
func (g *Gateway) EmbedOrNil(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vec, err := g.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("[MEMORY] Embed failed for %q: %v", truncateLog(text, 50), err)
		return nil
	}
	return vec
}

// AddInteraction stores the user utterance and the agent reply as two
// episodic memories sharing one timestamp so the turn can be correlated
// later. Each insertion is attempted independently: one side failing does
// not stop the other. Failures are returned as a single aggregate error for
// the caller's error channel, never raised in a way that aborts the turn.
func (g *Gateway) AddInteraction(ctx context.Context, userInput, aiResponse, sessionID string) error {
	timestamp := timeNow().UTC().Format(time.RFC3339Nano)

	var notes []string
	if err := g.addMemory(ctx, "User said: "+userInput, core.RoleUser, sessionID, timestamp); err != nil {
		log.Printf("[MEMORY] Failed to store user side: %v", err)
		notes = append(notes, fmt.Sprintf("store user memory: %v", err))
	}
	if err := g.addMemory(ctx, "AI responded: "+aiResponse, core.RoleAI, sessionID, timestamp); err != nil {
		log.Printf("[MEMORY] Failed to store ai side: %v", err)
		notes = append(notes, fmt.Sprintf("store ai memory: %v", err))
	}
	if len(notes) > 0 {
		return errors.New(strings.Join(notes, "; "))
	}
	return nil
}

func (g *Gateway) addMemory(ctx context.Context, document, role, sessionID, timestamp string) error {
	vec := g.EmbedOrNil(ctx, document)
	if vec == nil {
		return fmt.Errorf("embedding unavailable")
	}

	metadata := map[string]string{
		MetaType:           TypeEpisodic,
		MetaRole:           role,
		MetaTimestamp:      timestamp,
		MetaSessionID:      sessionID,
		MetaEmbeddingModel: g.modelID,
	}
	id := uuid.New().String()
	if err := g.store.Insert(ctx, id, vec, document, metadata); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	log.Printf("[MEMORY] Stored %s memory %s for session %s", role, id, sessionID)
	return nil
}

// RetrieveRelevant embeds queryText and returns the limit nearest stored
// memories, most relevant first. A failed embedding yields an empty result
// and no error (degraded context, not a failure); a failed store query is
// reported so the caller can note it. Results are re-sorted by distance
// defensively rather than trusting the store's ordering.
func (g *Gateway) RetrieveRelevant(ctx context.Context, queryText, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}

	vec := g.EmbedOrNil(ctx, queryText)
	if vec == nil {
		log.Printf("[MEMORY] Skipping retrieval, query embedding unavailable")
		return nil, nil
	}

	var filter map[string]string
	if g.sessionScoped {
		filter = map[string]string{MetaSessionID: sessionID}
	}

	results, err := g.store.Query(ctx, vec, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, res := range results {
		records = append(records, Record{
			Document: res.Document,
			Metadata: res.Metadata,
			Distance: res.Distance,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Distance < records[j].Distance
	})

	log.Printf("[MEMORY] Retrieved %d memories for query %q", len(records), truncateLog(queryText, 50))
	return records, nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
