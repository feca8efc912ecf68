// Package safety evaluates user utterances for crisis signals before any
// response is generated.
package safety

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/soulstice-ai/soulstice-go/llm"
)

// DefaultRiskKeywords trigger the lexical check. Substring-matched
// case-insensitively against the raw user input.
var DefaultRiskKeywords = []string{
	"suicide",
	"kill myself",
	"hopeless",
	"can't go on",
	"self-harm",
	"abuse",
}

// riskAssessmentPrompt constrains the classifier to a bare YES/NO answer.
const riskAssessmentPrompt = `You are an AI safety system. Analyze the user's input for any indication of immediate danger, crisis, suicidal ideation, self-harm, or mentions of abuse. Consider the conversation history for context.

User Input: "%s"

Conversation History (most recent first):
%s

Based *only* on the user's input and history, is there a high probability of immediate risk requiring escalation to suggest professional help / crisis lines?

Answer ONLY "YES" or "NO".

Answer:`

// Gate combines a fast lexical keyword check with a slower semantic
// classifier. Either check answering yes escalates; neither can retract the
// other's positive verdict.
type Gate struct {
	generator llm.Generator
	keywords  []string
}

// Option configures the gate.
type Option func(*Gate)

// WithKeywords replaces the default risk keyword set.
func WithKeywords(keywords []string) Option {
	return func(g *Gate) {
		g.keywords = keywords
	}
}

// NewGate creates a Gate. The generator backs the semantic check; a nil
// generator leaves the gate lexical-only.
func NewGate(generator llm.Generator, opts ...Option) *Gate {
	g := &Gate{
		generator: generator,
		keywords:  DefaultRiskKeywords,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assess returns whether the utterance warrants escalation. It never panics
// and always yields a valid verdict: if the semantic classifier fails, the
// gate degrades to lexical-only and reports the failure as a non-fatal
// diagnostic error alongside the verdict. A classifier failure is
// deliberately not treated as an escalation signal; the lexical check
// remains the safety net.
func (g *Gate) Assess(ctx context.Context, userInput, historyContext string) (bool, error) {
	escalate := g.lexicalCheck(userInput)
	if escalate {
		log.Printf("[SAFETY] Risk keyword matched in input %q", truncateLog(userInput, 80))
	}

	semantic, err := g.semanticCheck(ctx, userInput, historyContext)
	if err != nil {
		return escalate, fmt.Errorf("risk assessment call failed: %w", err)
	}

	return escalate || semantic, nil
}

// lexicalCheck is the pure, always-available keyword scan.
func (g *Gate) lexicalCheck(userInput string) bool {
	lower := strings.ToLower(userInput)
	for _, keyword := range g.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// semanticCheck asks the classifier for a YES/NO verdict. Any answer other
// than YES (after trimming, case-insensitive) counts as no for this check.
func (g *Gate) semanticCheck(ctx context.Context, userInput, historyContext string) (bool, error) {
	if g.generator == nil {
		return false, nil
	}

	prompt := fmt.Sprintf(riskAssessmentPrompt, userInput, historyContext)
	answer, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return false, err
	}

	verdict := strings.EqualFold(strings.TrimSpace(answer), "YES")
	log.Printf("[SAFETY] Semantic risk assessment: %q", strings.TrimSpace(answer))
	return verdict, nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
