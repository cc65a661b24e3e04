package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// The context bounds the upstream call; exceeding its deadline is an error,
// never a hang.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
