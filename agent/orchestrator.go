// Package agent implements the turn orchestration pipeline: the ordered
// sequence of stages that processes one user utterance into one reply.
//
// The pipeline is a fold over four stage functions (analyze, retrieve,
// safety, generate), each taking the current TurnState and returning a new
// one. Backend failures never abort a turn: every stage converts them into
// a documented fallback value plus an appended error note, so downstream
// stages always receive well-formed, if degraded, input.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/soulstice-ai/soulstice-go/core"
	"github.com/soulstice-ai/soulstice-go/history"
	"github.com/soulstice-ai/soulstice-go/llm"
	"github.com/soulstice-ai/soulstice-go/memory"
	"github.com/soulstice-ai/soulstice-go/safety"
)

// DefaultMaxHistoryTokens is the full history budget for prompt assembly.
// The analysis stage uses half of it, retrieval-query synthesis and the
// safety check a quarter each.
const DefaultMaxHistoryTokens = 3000

// maxMemoriesInPrompt caps how many retrieved memories the generation
// prompt renders.
const maxMemoriesInPrompt = 3

// Orchestrator sequences the four turn stages over explicitly injected
// service handles. No ambient global state: every backend is a constructor
// argument, which is what makes test doubles and per-session isolation
// possible.
type Orchestrator struct {
	generator llm.Generator
	memories  *memory.Gateway
	gate      *safety.Gate
	formatter *history.Formatter

	maxHistoryTokens int
	retrievalLimit   int
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithFormatter replaces the default history formatter.
func WithFormatter(f *history.Formatter) Option {
	return func(o *Orchestrator) {
		o.formatter = f
	}
}

// WithMaxHistoryTokens overrides the full history budget.
func WithMaxHistoryTokens(n int) Option {
	return func(o *Orchestrator) {
		o.maxHistoryTokens = n
	}
}

// WithRetrievalLimit overrides how many memories the retrieve stage asks for.
func WithRetrievalLimit(n int) Option {
	return func(o *Orchestrator) {
		o.retrievalLimit = n
	}
}

// NewOrchestrator wires the pipeline's collaborators together.
func NewOrchestrator(generator llm.Generator, memories *memory.Gateway, gate *safety.Gate, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator:        generator,
		memories:         memories,
		gate:             gate,
		formatter:        history.NewFormatter(nil),
		maxHistoryTokens: DefaultMaxHistoryTokens,
		retrievalLimit:   memory.DefaultRetrievalLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunTurn processes one user utterance into one reply. It always returns a
// terminal state: Response carries either the generated reply or a fixed
// fallback, and Err the accumulated failure notes, if any. The caller's
// history slice is copied and never mutated.
func (o *Orchestrator) RunTurn(ctx context.Context, sessionID, userInput string, hist []core.Message) TurnState {
	st := TurnState{
		SessionID: sessionID,
		UserInput: userInput,
		History:   core.CopyHistory(hist),
	}

	for _, stage := range []func(context.Context, TurnState) TurnState{
		o.analyze,
		o.retrieve,
		o.safetyCheck,
		o.generate,
	} {
		st = stage(ctx, st)
	}

	if st.Err != "" {
		log.Printf("[TURN] Session %s completed degraded: %s", sessionID, st.Err)
	}
	return st
}

// analyze asks the model for the structured input analysis. Parse or backend
// failure tags the analysis as errored and notes it, but the turn continues.
func (o *Orchestrator) analyze(ctx context.Context, st TurnState) TurnState {
	bounded := o.formatter.Format(st.History, o.maxHistoryTokens/2)
	prompt := fmt.Sprintf(inputAnalysisPrompt, st.UserInput, bounded)

	raw, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[TURN] Input analysis call failed: %v", err)
		st.Analysis = core.ErrAnalysis("analysis backend failed")
		return st.withError("failed to analyze input")
	}

	analysis, err := core.ParseAnalysis(raw)
	if err != nil {
		log.Printf("[TURN] Input analysis unparseable: %v", err)
		st.Analysis = core.ErrAnalysis("analysis parsing failed")
		return st.withError("failed to analyze input")
	}

	st.Analysis = analysis
	return st
}

// retrieve loads relevant memories. A turn already known to be degraded
// skips the retrieval call entirely rather than spending an embedding and a
// store query on it.
func (o *Orchestrator) retrieve(ctx context.Context, st TurnState) TurnState {
	if st.Err != "" || !st.Analysis.Ok() {
		log.Printf("[TURN] Skipping memory retrieval for degraded turn")
		st.Memories = []memory.Record{}
		return st
	}

	bounded := o.formatter.Format(st.History, o.maxHistoryTokens/4)
	query := o.memories.BuildQuery(ctx, memory.QueryInput{
		UserInput:       st.UserInput,
		KeyTopics:       st.Analysis.KeyTopics,
		DominantEmotion: st.Analysis.DominantEmotion,
		History:         bounded,
	})

	records, err := o.memories.RetrieveRelevant(ctx, query, st.SessionID, o.retrievalLimit)
	if err != nil {
		st.Memories = []memory.Record{}
		return st.withError("failed to retrieve memories")
	}
	if records == nil {
		records = []memory.Record{}
	}
	st.Memories = records
	return st
}

// safetyCheck runs the gate. An already-errored turn skips the assessment
// and defaults to no escalation: a broken turn should not additionally
// block on a safety call. A semantic-check failure inside the gate is noted
// on the error channel without discarding the lexical verdict.
func (o *Orchestrator) safetyCheck(ctx context.Context, st TurnState) TurnState {
	if st.Err != "" {
		log.Printf("[TURN] Skipping safety check for degraded turn")
		st.NeedsEscalation = false
		return st
	}

	bounded := o.formatter.Format(st.History, o.maxHistoryTokens/4)
	escalate, err := o.gate.Assess(ctx, st.UserInput, bounded)
	st.NeedsEscalation = escalate
	if err != nil {
		return st.withError("safety semantic check failed")
	}
	return st
}

// generate produces the final reply with an explicit three-way dispatch, in
// precedence order: degraded turn, escalation, normal generation. Error
// always outranks escalation.
func (o *Orchestrator) generate(ctx context.Context, st TurnState) TurnState {
	switch {
	case st.Err != "":
		st.Response = ErrorFallback
		return st

	case st.NeedsEscalation:
		// The fixed escalation message is this stage's whole job here:
		// no backend call, and the turn is not persisted to memory.
		log.Printf("[TURN] Escalating session %s", st.SessionID)
		st.Response = EscalationMessage
		return st
	}

	prompt := o.buildResponsePrompt(st)
	response, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[TURN] Response generation failed: %v", err)
		st.Response = TroubleFallback
		return st.withError("failed to generate response")
	}
	st.Response = response

	// The reply stands even if persisting it fails; the failure is only
	// noted on the error channel.
	if err := o.memories.AddInteraction(ctx, st.UserInput, response, st.SessionID); err != nil {
		st = st.withError(fmt.Sprintf("failed to save interaction to memory: %v", err))
	}
	return st
}

func (o *Orchestrator) buildResponsePrompt(st TurnState) string {
	analysisJSON, err := json.MarshalIndent(st.Analysis.AnalysisFields, "", "  ")
	if err != nil {
		analysisJSON = []byte("{}")
	}
	bounded := o.formatter.Format(st.History, o.maxHistoryTokens)
	return fmt.Sprintf(responseGenerationPrompt,
		st.UserInput, analysisJSON, formatMemories(st.Memories), bounded)
}

// formatMemories renders the highest-relevance records for the prompt, with
// a relevance score derived as 1 - distance.
func formatMemories(records []memory.Record) string {
	if len(records) == 0 {
		return "No relevant memories found."
	}
	n := len(records)
	if n > maxMemoriesInPrompt {
		n = maxMemoriesInPrompt
	}
	lines := make([]string, 0, n)
	for _, rec := range records[:n] {
		lines = append(lines, fmt.Sprintf("- %s (Relevance: %.2f)", rec.Document, rec.Relevance()))
	}
	return strings.Join(lines, "\n")
}
