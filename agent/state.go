package agent

import (
	"github.com/soulstice-ai/soulstice-go/core"
	"github.com/soulstice-ai/soulstice-go/memory"
)

// TurnState threads through the four pipeline stages of one turn. It is
// owned by exactly one RunTurn invocation: stages take it by value and
// return an updated copy, so a failed turn can never corrupt the caller's
// conversation history.
type TurnState struct {
	// SessionID is the opaque session identifier, stable across turns.
	SessionID string

	// UserInput is the raw utterance for this turn.
	UserInput string

	// History is a copy of the prior conversation, chronological.
	History []core.Message

	// Analysis is the structured input analysis, or an error marker.
	Analysis core.Analysis

	// Memories are the retrieved records, most relevant first.
	Memories []memory.Record

	// NeedsEscalation is the safety gate's verdict.
	NeedsEscalation bool

	// Response is the turn's sole output besides Err.
	Response string

	// Err accumulates failure notes. Appended to, never overwritten: a
	// stage that fails after an earlier failure adds its own note so the
	// final state preserves the whole failure chain.
	Err string
}

// withError returns the state with note appended to the error chain.
func (s TurnState) withError(note string) TurnState {
	s.Err = appendNote(s.Err, note)
	return s
}

// appendNote joins error notes without discarding earlier ones.
func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
