// Package history renders conversation logs into token-budgeted text blocks
// for prompt assembly.
package history

import (
	"strings"

	"github.com/soulstice-ai/soulstice-go/core"
)

// Tokenizer counts tokens in a piece of text. Implementations must be
// deterministic: the formatter's output is only reproducible if counting is.
type Tokenizer interface {
	Count(text string) int
}

// HeuristicTokenizer estimates token counts with the ~4 characters/token rule.
// Good enough for budget comparisons; not billing-accurate.
type HeuristicTokenizer struct{}

// Count returns the estimated token count for text, rounding up.
func (HeuristicTokenizer) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// Formatter renders a chronological conversation log into a single text block
// that stays within a caller-supplied token budget, preferring recent turns.
type Formatter struct {
	tokenizer Tokenizer
}

// NewFormatter returns a Formatter using the given tokenizer.
// A nil tokenizer falls back to the heuristic one.
func NewFormatter(t Tokenizer) *Formatter {
	if t == nil {
		t = HeuristicTokenizer{}
	}
	return &Formatter{tokenizer: t}
}

// Format walks history from most recent to oldest, rendering each turn as
// "{Role}: {content}" and accumulating turns while the running token total
// stays within maxTokens. The first turn that would exceed the budget stops
// accumulation outright; older turns are not considered even if they would
// individually fit. The kept turns are returned in chronological order,
// joined by newlines. Empty history or a zero budget yields "".
func (f *Formatter) Format(history []core.Message, maxTokens int) string {
	if len(history) == 0 || maxTokens <= 0 {
		return ""
	}

	var kept []string
	total := 0
	for i := len(history) - 1; i >= 0; i-- {
		line := renderTurn(history[i])
		n := f.tokenizer.Count(line)
		if total+n > maxTokens {
			break
		}
		kept = append(kept, line)
		total += n
	}

	// kept is newest-first; reverse back to chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}

func renderTurn(m core.Message) string {
	return capitalize(m.Role) + ": " + m.Content
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
