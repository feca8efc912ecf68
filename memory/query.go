package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// retrievalQueryPrompt asks the model to distill the turn into a short search
// query over past interactions.
const retrievalQueryPrompt = `Based on the user's current input and the conversation history, generate a concise query to retrieve relevant past interactions from memory that would help in understanding the user's current state or formulating an empathetic response. Focus on the key topics and emotions.

User Input: "%s"

Key Topics: %s
Dominant Emotion: %s

Conversation History (most recent first):
%s

Generate a search query (max 1-2 sentences):`

// QueryInput carries the fields the retrieval query is synthesized from.
type QueryInput struct {
	UserInput       string
	KeyTopics       []string
	DominantEmotion string
	History         string // already bounded by the caller
}

// BuildQuery constructs the text that gets embedded for memory retrieval.
// The primary path asks the generator for a concise synthesized query; on
// generator failure or an empty answer it falls back deterministically to a
// templated concatenation of the same fields.
func (g *Gateway) BuildQuery(ctx context.Context, in QueryInput) string {
	if g.generator == nil {
		return FallbackQuery(in)
	}

	prompt := fmt.Sprintf(retrievalQueryPrompt,
		in.UserInput, joinOrNone(in.KeyTopics), emotionOrNeutral(in.DominantEmotion), in.History)

	out, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[MEMORY] Query synthesis failed, using fallback: %v", err)
		return FallbackQuery(in)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackQuery(in)
	}
	return out
}

// FallbackQuery is the deterministic query template used when synthesis is
// unavailable. Exported so it can be exercised independently in tests.
func FallbackQuery(in QueryInput) string {
	return fmt.Sprintf("Topics: %s. Emotion: %s. User said: %s",
		joinOrNone(in.KeyTopics), emotionOrNeutral(in.DominantEmotion), in.UserInput)
}

func joinOrNone(topics []string) string {
	if len(topics) == 0 {
		return "none"
	}
	return strings.Join(topics, ", ")
}

func emotionOrNeutral(emotion string) string {
	if emotion == "" {
		return "neutral"
	}
	return emotion
}
