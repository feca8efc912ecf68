package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/soulstice-ai/soulstice-go/llm"
)

func TestBuildQuery_UsesGenerator(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "work stress") {
			t.Errorf("prompt missing user input: %q", prompt)
		}
		return "  past conversations about work stress and burnout \n", nil
	})
	g := NewGateway(&fakeStore{}, &fakeEmbedder{}, gen)

	got := g.BuildQuery(context.Background(), QueryInput{
		UserInput:       "work stress is getting to me",
		KeyTopics:       []string{"work", "stress"},
		DominantEmotion: "anxiety",
	})
	if got != "past conversations about work stress and burnout" {
		t.Errorf("BuildQuery = %q", got)
	}
}

func TestBuildQuery_FallbackOnGeneratorError(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("backend down")
	})
	g := NewGateway(&fakeStore{}, &fakeEmbedder{}, gen)

	in := QueryInput{UserInput: "rough day", KeyTopics: []string{"work"}, DominantEmotion: "sadness"}
	if got := g.BuildQuery(context.Background(), in); got != FallbackQuery(in) {
		t.Errorf("BuildQuery = %q, want fallback %q", got, FallbackQuery(in))
	}
}

func TestBuildQuery_FallbackOnEmptyAnswer(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "   \n ", nil
	})
	g := NewGateway(&fakeStore{}, &fakeEmbedder{}, gen)

	in := QueryInput{UserInput: "rough day"}
	if got := g.BuildQuery(context.Background(), in); got != FallbackQuery(in) {
		t.Errorf("BuildQuery = %q, want fallback", got)
	}
}

func TestBuildQuery_NilGenerator(t *testing.T) {
	g := NewGateway(&fakeStore{}, &fakeEmbedder{}, nil)

	in := QueryInput{UserInput: "rough day"}
	if got := g.BuildQuery(context.Background(), in); got != FallbackQuery(in) {
		t.Errorf("BuildQuery = %q, want fallback", got)
	}
}

func TestFallbackQuery(t *testing.T) {
	got := FallbackQuery(QueryInput{
		UserInput:       "I can't sleep",
		KeyTopics:       []string{"sleep", "worry"},
		DominantEmotion: "anxiety",
	})
	want := "Topics: sleep, worry. Emotion: anxiety. User said: I can't sleep"
	if got != want {
		t.Errorf("FallbackQuery = %q, want %q", got, want)
	}
}

func TestFallbackQuery_Defaults(t *testing.T) {
	got := FallbackQuery(QueryInput{UserInput: "hi"})
	want := "Topics: none. Emotion: neutral. User said: hi"
	if got != want {
		t.Errorf("FallbackQuery = %q, want %q", got, want)
	}
}
