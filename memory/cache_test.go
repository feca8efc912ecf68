package memory

import (
	"context"
	"errors"
	"testing"
)

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	inner := &fakeEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16)
	if err != nil {
		t.Fatalf("NewCachedEmbedder: %v", err)
	}
	defer cached.Close()

	first, err := cached.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	cached.Wait()

	second, err := cached.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", inner.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cached vector differs: %v vs %v", first, second)
	}
}

func TestCachedEmbedder_DistinctTextsMiss(t *testing.T) {
	inner := &fakeEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16)
	if err != nil {
		t.Fatalf("NewCachedEmbedder: %v", err)
	}
	defer cached.Close()

	cached.Embed(context.Background(), "one")
	cached.Embed(context.Background(), "two")
	if inner.calls != 2 {
		t.Errorf("inner embedder called %d times, want 2", inner.calls)
	}
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	inner := &failNTimesEmbedder{failures: 1}
	cached, err := NewCachedEmbedder(inner, 16)
	if err != nil {
		t.Fatalf("NewCachedEmbedder: %v", err)
	}
	defer cached.Close()

	if _, err := cached.Embed(context.Background(), "flaky"); err == nil {
		t.Fatal("expected first call to fail")
	}
	cached.Wait()

	vec, err := cached.Embed(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("second call should reach the recovered inner embedder: %v", err)
	}
	if vec == nil {
		t.Error("expected vector after recovery")
	}
}

func TestCachedEmbedder_Dimensions(t *testing.T) {
	cached, err := NewCachedEmbedder(&fakeEmbedder{}, 16)
	if err != nil {
		t.Fatalf("NewCachedEmbedder: %v", err)
	}
	defer cached.Close()

	if got := cached.Dimensions(); got != 3 {
		t.Errorf("Dimensions = %d, want 3", got)
	}
}

// failNTimesEmbedder fails the first n calls, then recovers.
type failNTimesEmbedder struct {
	failures int
	calls    int
}

func (e *failNTimesEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, errors.New("transient failure")
	}
	return []float32{0, 1, 0}, nil
}

func (e *failNTimesEmbedder) Dimensions() int { return 3 }
