// Package memory provides the episodic memory subsystem for the agent.
//
// Memories are single past utterances and responses, embedded and stored in
// a vector index for similarity retrieval. Two records are written per
// conversational turn (one per side) sharing a timestamp.
//
// Architecture:
//   - Store: vector storage backend (chromem-go embedded database)
//   - Embedder: text-to-vector conversion (ONNX local model, mock for tests,
//     ristretto-cached decorator)
//   - Gateway: mediates between the turn pipeline's text and the vector
//     interface - embeds, ranks, and persists
//
// Integration with the turn pipeline:
//   - retrieve stage: BuildQuery + RetrieveRelevant before generation
//   - generate stage: AddInteraction after a successful response
//
// The store handle is shared across turns and sessions; retrieval defaults
// to cross-session recall, with a strict per-session mode available via the
// SessionScoped option.
package memory
