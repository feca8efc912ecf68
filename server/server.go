// Package server exposes the agent over WebSocket: one conversation session
// per connection, with the history kept server-side between turns.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soulstice-ai/soulstice-go/agent"
	"github.com/soulstice-ai/soulstice-go/core"
)

// Reply is the outgoing frame for one processed turn.
type Reply struct {
	Response string `json:"response"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Server serves chat sessions over /ws and liveness over /health.
type Server struct {
	orchestrator *agent.Orchestrator
	upgrader     websocket.Upgrader
}

// New creates a Server around the given orchestrator.
func New(orchestrator *agent.Orchestrator) *Server {
	return &Server{
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP handler with the /ws and /health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run starts serving on addr and blocks.
func (s *Server) Run(addr string) error {
	log.Printf("[SERVER] Listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWS runs one chat session for the lifetime of the connection. Each
// text frame is a user utterance; each reply frame carries the agent's
// response. The session's history lives here, outside the pipeline, and is
// only extended after turns that actually produced a reply.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	var hist []core.Message
	log.Printf("[SERVER] Session %s connected", sessionID)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[SERVER] Session %s closed: %v", sessionID, err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		userInput := strings.TrimSpace(string(data))
		if userInput == "" {
			continue
		}

		st := s.orchestrator.RunTurn(r.Context(), sessionID, userInput, hist)

		if err := conn.WriteJSON(Reply{Response: st.Response, Degraded: st.Err != ""}); err != nil {
			log.Printf("[SERVER] Session %s write failed: %v", sessionID, err)
			return
		}

		if turnShouldExtendHistory(st) {
			hist = append(hist,
				core.Message{Role: core.RoleUser, Content: userInput},
				core.Message{Role: core.RoleAI, Content: st.Response},
			)
		}
	}
}

// turnShouldExtendHistory mirrors the CLI: a turn whose generation failed
// outright is not added to the running history, so a transient backend
// outage doesn't bake fallback text into later prompts.
func turnShouldExtendHistory(st agent.TurnState) bool {
	return !strings.Contains(st.Err, "failed to generate response")
}
