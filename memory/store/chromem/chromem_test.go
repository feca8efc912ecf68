package chromem_test

import (
	"context"
	"testing"

	"github.com/soulstice-ai/soulstice-go/memory"
	chromemstore "github.com/soulstice-ai/soulstice-go/memory/store/chromem"
)

func newTestStore(t *testing.T) *chromemstore.ChromemStore {
	t.Helper()
	store, err := chromemstore.New(chromemstore.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func seed(t *testing.T, store *chromemstore.ChromemStore, id string, vec []float32, doc, session string) {
	t.Helper()
	err := store.Insert(context.Background(), id, vec, doc, map[string]string{
		memory.MetaSessionID: session,
		memory.MetaType:      memory.TypeEpisodic,
	})
	if err != nil {
		t.Fatalf("Insert %s: %v", id, err)
	}
}

func TestQuery_OrdersByDistance(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "a", []float32{1, 0, 0}, "exact match", "s1")
	seed(t, store, "b", []float32{0, 1, 0}, "orthogonal", "s1")
	seed(t, store, "c", []float32{0.8, 0.6, 0}, "close match", "s1")

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantOrder := []string{"exact match", "close match", "orthogonal"}
	for i, w := range wantOrder {
		if results[i].Document != w {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Document, w)
		}
	}
	if results[0].Distance > 0.001 {
		t.Errorf("exact match distance = %f, want ~0", results[0].Distance)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not ascending by distance at %d", i)
		}
	}
}

func TestQuery_EmptyCollection(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Query on empty collection: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty collection", len(results))
	}
}

func TestQuery_ClampsRequestedCount(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "a", []float32{1, 0, 0}, "only one", "s1")

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Query with k beyond collection size: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestQuery_MetadataFilter(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "a", []float32{1, 0, 0}, "mine", "s1")
	seed(t, store, "b", []float32{0.9, 0.1, 0}, "theirs", "s2")

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 2,
		map[string]string{memory.MetaSessionID: "s1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Document != "mine" {
		t.Errorf("filtered result = %q", results[0].Document)
	}
	if results[0].Metadata[memory.MetaSessionID] != "s1" {
		t.Errorf("metadata = %v", results[0].Metadata)
	}
}

func TestNew_PersistentRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := chromemstore.New(chromemstore.Config{Path: dir})
	if err != nil {
		t.Fatalf("New persistent: %v", err)
	}
	seed(t, store, "a", []float32{1, 0, 0}, "remembered across restarts", "s1")

	reopened, err := chromemstore.New(chromemstore.Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	results, err := reopened.Query(context.Background(), []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Query after reopen: %v", err)
	}
	if len(results) != 1 || results[0].Document != "remembered across restarts" {
		t.Errorf("persisted data not recovered: %v", results)
	}
}
