package generation

import (
	"context"
	"fmt"

	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// JokeInserter stores a joke row.
type JokeInserter interface {
	Insert(ctx context.Context, characterName, content string) (*types.Joke, error)
}

// MemoryWriter stores a memory row.
type MemoryWriter interface {
	AddMemory(ctx context.Context, mem types.Memory) error
}

// Persister writes generated jokes and, best-effort, their memory rows.
type Persister struct {
	jokes    JokeInserter
	memories MemoryWriter
	embedder llm.Embedder
}

func NewPersister(jokes JokeInserter, memories MemoryWriter, embedder llm.Embedder) *Persister {
	return &Persister{
		jokes:    jokes,
		memories: memories,
		embedder: embedder,
	}
}

// SaveNewJoke inserts the joke, then independently attempts the memory
// embedding write. The two writes are deliberately non-atomic: a memory
// failure logs a warning and never rolls back or propagates, while a joke
// insert failure is returned to the caller.
func (p *Persister) SaveNewJoke(ctx context.Context, characterID int, characterName, content string) error {
	if _, err := p.jokes.Insert(ctx, characterName, content); err != nil {
		return fmt.Errorf("failed to save joke: %w", err)
	}

	p.saveMemory(ctx, characterID, content, types.MemoryTypeGeneratedJoke)
	return nil
}

// SaveCuratedMemory records an approved joke into memory so future
// generations can ground on it.
func (p *Persister) SaveCuratedMemory(ctx context.Context, characterID int, content string) {
	p.saveMemory(ctx, characterID, content, types.MemoryTypeCuratedJoke)
}

func (p *Persister) saveMemory(ctx context.Context, characterID int, content, memoryType string) {
	if p.memories == nil || p.embedder == nil {
		return
	}
	embedding, err := p.embedder.EmbedDocument(ctx, content)
	if err != nil {
		log.Warnw("failed to embed joke for memory", "character_id", characterID, "error", err.Error())
		return
	}
	if err := p.memories.AddMemory(ctx, types.Memory{
		CharacterID: characterID,
		Content:     content,
		Type:        memoryType,
		Embedding:   embedding,
	}); err != nil {
		log.Warnw("failed to store joke memory", "character_id", characterID, "error", err.Error())
	}
}
