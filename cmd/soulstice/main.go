// Command soulstice runs the companion agent, either as an interactive CLI
// session or as a WebSocket server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/soulstice-ai/soulstice-go/agent"
	"github.com/soulstice-ai/soulstice-go/core"
	"github.com/soulstice-ai/soulstice-go/llm/anthropic"
	"github.com/soulstice-ai/soulstice-go/memory"
	chromemstore "github.com/soulstice-ai/soulstice-go/memory/store/chromem"
	"github.com/soulstice-ai/soulstice-go/safety"
	"github.com/soulstice-ai/soulstice-go/server"
)

func main() {
	listen := flag.String("listen", "", "serve WebSocket chat on this address (e.g. :8080) instead of the CLI")
	flag.Parse()

	// Load .env if present; system env vars otherwise.
	_ = godotenv.Load()

	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	if anthropicKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	model := os.Getenv("SOULSTICE_MODEL")
	dbPath := os.Getenv("SOULSTICE_DB_PATH")
	if dbPath == "" {
		dbPath = "./soulstice_db"
	}
	sessionScoped := os.Getenv("SOULSTICE_SESSION_SCOPED") == "true"

	generator := anthropic.New(anthropic.Config{
		APIKey: anthropicKey,
		Model:  model,
	})

	store, err := chromemstore.New(chromemstore.Config{Path: dbPath})
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	log.Println("[MAIN] Vector store ready")

	embedder, modelID, err := newEmbedder()
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	cached, err := memory.NewCachedEmbedder(embedder, 4096)
	if err != nil {
		log.Fatalf("Failed to initialize embedding cache: %v", err)
	}
	defer cached.Close()

	gateway := memory.NewGateway(store, cached, generator,
		memory.WithEmbeddingModelID(modelID),
		memory.SessionScoped(sessionScoped),
	)
	gate := safety.NewGate(generator)
	orchestrator := agent.NewOrchestrator(generator, gateway, gate)

	if *listen != "" {
		srv := server.New(orchestrator)
		log.Fatal(srv.Run(*listen))
	}

	runChat(orchestrator)
}

// runChat is the interactive loop: one uuid session, history accumulated
// across turns, 'quit' or 'exit' to leave.
func runChat(orchestrator *agent.Orchestrator) {
	sessionID := uuid.New().String()
	var hist []core.Message
	log.Printf("[MAIN] Starting chat session %s", sessionID)

	fmt.Println("--- Soulstice ---")
	fmt.Println("Type 'quit' or 'exit' to end the session.")
	fmt.Println("Welcome! How are you feeling today?")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println("\nSoulstice: Take care. Remember support is available if you need it.")
			return
		}
		userInput := strings.TrimSpace(scanner.Text())
		if userInput == "" {
			continue
		}
		if lower := strings.ToLower(userInput); lower == "quit" || lower == "exit" {
			fmt.Println("Soulstice: Take care. Remember support is available if you need it.")
			return
		}

		st := orchestrator.RunTurn(context.Background(), sessionID, userInput, hist)
		if st.Err != "" {
			log.Printf("[MAIN] Turn completed with errors: %s", st.Err)
		}
		fmt.Printf("Soulstice: %s\n", st.Response)

		// A turn whose generation failed outright stays out of the
		// history so the fallback text doesn't leak into later prompts.
		if !strings.Contains(st.Err, "failed to generate response") {
			hist = append(hist,
				core.Message{Role: core.RoleUser, Content: userInput},
				core.Message{Role: core.RoleAI, Content: st.Response},
			)
		}
	}
}
