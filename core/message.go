package core

// Conversation roles. The history only ever carries these two.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message is one turn of the conversation history: who spoke and what they said.
// Histories are chronological and owned by the caller; the agent receives a copy
// each turn so a failed turn cannot corrupt them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CopyHistory returns an independent copy of a conversation history.
func CopyHistory(history []Message) []Message {
	if history == nil {
		return nil
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
