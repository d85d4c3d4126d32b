// Package memory implements semantic retrieval of stored jokes.
package memory

import (
	"context"

	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// SearchRepo performs nearest-neighbor lookups against stored embeddings.
type SearchRepo interface {
	SearchNearest(ctx context.Context, characterID int, embedding []float32, limit int) ([]string, error)
}

// Retriever provides semantic search over a character's joke memories.
type Retriever struct {
	embedder     llm.Embedder
	repo         SearchRepo
	defaultLimit int
}

func NewRetriever(embedder llm.Embedder, repo SearchRepo, defaultLimit int) *Retriever {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &Retriever{
		embedder:     embedder,
		repo:         repo,
		defaultLimit: defaultLimit,
	}
}

// Retrieve embeds the topic and returns up to limit memory contents ordered
// by vector distance. Any failure, in the embedding call or the query,
// degrades to an empty list; callers must treat that as "no context
// available", never as an error signal.
func (r *Retriever) Retrieve(ctx context.Context, characterID int, topic string, limit int) []string {
	if topic == "" || r.embedder == nil || r.repo == nil {
		return nil
	}
	if limit <= 0 {
		limit = r.defaultLimit
	}

	embedding, err := r.embedder.EmbedQuery(ctx, topic)
	if err != nil {
		log.Warnw("failed to embed memory query", "character_id", characterID, "error", err.Error())
		return nil
	}

	contents, err := r.repo.SearchNearest(ctx, characterID, embedding, limit)
	if err != nil {
		log.Warnw("failed to search memories", "character_id", characterID, "error", err.Error())
		return nil
	}
	return contents
}
