package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soulstice-ai/soulstice-go/core"
)

// fakeEmbedder returns a fixed small vector, optionally failing for documents
// matching failSubstr.
type fakeEmbedder struct {
	failSubstr string
	calls      int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failSubstr != "" && strings.Contains(text, e.failSubstr) {
		return nil, errors.New("embedder unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func (e *fakeEmbedder) Dimensions() int { return 3 }

type insertedMemory struct {
	id       string
	vector   []float32
	document string
	metadata map[string]string
}

// fakeStore records inserts and replays scripted query results.
type fakeStore struct {
	inserts   []insertedMemory
	insertErr error

	queryResults []QueryResult
	queryErr     error
	lastK        int
	lastFilter   map[string]string
}

func (s *fakeStore) Insert(ctx context.Context, id string, vector []float32, document string, metadata map[string]string) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserts = append(s.inserts, insertedMemory{id: id, vector: vector, document: document, metadata: metadata})
	return nil
}

func (s *fakeStore) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]QueryResult, error) {
	s.lastK = k
	s.lastFilter = filter
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryResults, nil
}

func TestEmbedOrNil(t *testing.T) {
	embedder := &fakeEmbedder{}
	g := NewGateway(&fakeStore{}, embedder, nil)

	if vec := g.EmbedOrNil(context.Background(), "   "); vec != nil {
		t.Error("blank input should yield nil without embedding")
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times for blank input", embedder.calls)
	}

	if vec := g.EmbedOrNil(context.Background(), "hello"); vec == nil {
		t.Error("expected vector for normal input")
	}

	failing := &fakeEmbedder{failSubstr: "hello"}
	g = NewGateway(&fakeStore{}, failing, nil)
	if vec := g.EmbedOrNil(context.Background(), "hello"); vec != nil {
		t.Error("embedder failure should yield nil, not panic or error")
	}
}

func TestAddInteraction_StoresBothSides(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	store := &fakeStore{}
	g := NewGateway(store, &fakeEmbedder{}, nil, WithEmbeddingModelID("mock-384"))

	err := g.AddInteraction(context.Background(), "I had a rough day", "That sounds hard.", "sess-1")
	if err != nil {
		t.Fatalf("AddInteraction: %v", err)
	}

	if len(store.inserts) != 2 {
		t.Fatalf("got %d inserts, want 2", len(store.inserts))
	}

	user, ai := store.inserts[0], store.inserts[1]
	if user.document != "User said: I had a rough day" {
		t.Errorf("user document = %q", user.document)
	}
	if ai.document != "AI responded: That sounds hard." {
		t.Errorf("ai document = %q", ai.document)
	}
	if user.metadata[MetaRole] != core.RoleUser || ai.metadata[MetaRole] != core.RoleAI {
		t.Errorf("roles = %q, %q", user.metadata[MetaRole], ai.metadata[MetaRole])
	}

	wantTS := fixed.Format(time.RFC3339Nano)
	if user.metadata[MetaTimestamp] != wantTS {
		t.Errorf("timestamp = %q, want %q", user.metadata[MetaTimestamp], wantTS)
	}
	if user.metadata[MetaTimestamp] != ai.metadata[MetaTimestamp] {
		t.Error("both sides of the interaction must share one timestamp")
	}

	for _, m := range store.inserts {
		if m.metadata[MetaType] != TypeEpisodic {
			t.Errorf("type = %q", m.metadata[MetaType])
		}
		if m.metadata[MetaSessionID] != "sess-1" {
			t.Errorf("session = %q", m.metadata[MetaSessionID])
		}
		if m.metadata[MetaEmbeddingModel] != "mock-384" {
			t.Errorf("embedding model = %q", m.metadata[MetaEmbeddingModel])
		}
		if m.id == "" {
			t.Error("empty memory id")
		}
	}
	if user.id == ai.id {
		t.Error("both sides stored under the same id")
	}
}

func TestAddInteraction_OneSideFailing(t *testing.T) {
	// The ai side fails to embed; the user side must still be stored and the
	// failure reported without aborting.
	store := &fakeStore{}
	g := NewGateway(store, &fakeEmbedder{failSubstr: "AI responded:"}, nil)

	err := g.AddInteraction(context.Background(), "hello", "hi there", "sess-1")
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "store ai memory") {
		t.Errorf("error %q does not identify the failed side", err)
	}
	if len(store.inserts) != 1 {
		t.Fatalf("got %d inserts, want 1 (user side)", len(store.inserts))
	}
	if store.inserts[0].metadata[MetaRole] != core.RoleUser {
		t.Errorf("surviving insert role = %q", store.inserts[0].metadata[MetaRole])
	}
}

func TestAddInteraction_BothSidesFailing(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("disk full")}
	g := NewGateway(store, &fakeEmbedder{}, nil)

	err := g.AddInteraction(context.Background(), "hello", "hi", "sess-1")
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "store user memory") || !strings.Contains(msg, "store ai memory") {
		t.Errorf("aggregate error %q missing a side", msg)
	}
	if !strings.Contains(msg, "; ") {
		t.Errorf("aggregate error %q not joined with %q", msg, "; ")
	}
}

func TestRetrieveRelevant_EmbedFailureIsEmptyNotError(t *testing.T) {
	g := NewGateway(&fakeStore{}, &fakeEmbedder{failSubstr: "anything"}, nil)

	records, err := g.RetrieveRelevant(context.Background(), "anything at all", "sess-1", 5)
	if err != nil {
		t.Fatalf("embed failure must not surface as a retrieval error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestRetrieveRelevant_StoreFailure(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("collection gone")}
	g := NewGateway(store, &fakeEmbedder{}, nil)

	_, err := g.RetrieveRelevant(context.Background(), "query", "sess-1", 5)
	if err == nil {
		t.Fatal("expected error from store query failure")
	}
	if !strings.Contains(err.Error(), "query memories") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRetrieveRelevant_SortsByDistance(t *testing.T) {
	store := &fakeStore{queryResults: []QueryResult{
		{Document: "far", Distance: 0.9},
		{Document: "near", Distance: 0.1},
		{Document: "mid", Distance: 0.5},
	}}
	g := NewGateway(store, &fakeEmbedder{}, nil)

	records, err := g.RetrieveRelevant(context.Background(), "query", "sess-1", 3)
	if err != nil {
		t.Fatalf("RetrieveRelevant: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	want := []string{"near", "mid", "far"}
	for i, w := range want {
		if records[i].Document != w {
			t.Errorf("records[%d] = %q, want %q", i, records[i].Document, w)
		}
	}
	if rel := records[0].Relevance(); rel < 0.89 || rel > 0.91 {
		t.Errorf("Relevance() = %f, want 1-distance", rel)
	}
}

func TestRetrieveRelevant_SessionScoping(t *testing.T) {
	store := &fakeStore{}

	g := NewGateway(store, &fakeEmbedder{}, nil)
	if _, err := g.RetrieveRelevant(context.Background(), "q", "sess-1", 5); err != nil {
		t.Fatalf("RetrieveRelevant: %v", err)
	}
	if store.lastFilter != nil {
		t.Errorf("cross-session retrieval should pass no filter, got %v", store.lastFilter)
	}

	g = NewGateway(store, &fakeEmbedder{}, nil, SessionScoped(true))
	if _, err := g.RetrieveRelevant(context.Background(), "q", "sess-1", 5); err != nil {
		t.Fatalf("RetrieveRelevant: %v", err)
	}
	if store.lastFilter[MetaSessionID] != "sess-1" {
		t.Errorf("session-scoped filter = %v", store.lastFilter)
	}
}

func TestRetrieveRelevant_DefaultLimit(t *testing.T) {
	store := &fakeStore{}
	g := NewGateway(store, &fakeEmbedder{}, nil)

	if _, err := g.RetrieveRelevant(context.Background(), "q", "sess-1", 0); err != nil {
		t.Fatalf("RetrieveRelevant: %v", err)
	}
	if store.lastK != DefaultRetrievalLimit {
		t.Errorf("k = %d, want %d", store.lastK, DefaultRetrievalLimit)
	}
}
