package generation

import (
	"context"
	"fmt"
	"testing"

	"github.com/kharazdev/joke-factory/internal/types"
)

type fakeJokes struct {
	inserted []types.Joke
	err      error
}

func (f *fakeJokes) Insert(ctx context.Context, characterName, content string) (*types.Joke, error) {
	if f.err != nil {
		return nil, f.err
	}
	joke := types.Joke{ID: len(f.inserted) + 1, CharacterName: characterName, Content: content, Visible: true}
	f.inserted = append(f.inserted, joke)
	return &joke, nil
}

type fakeMemoryWriter struct {
	added []types.Memory
	err   error
}

func (f *fakeMemoryWriter) AddMemory(ctx context.Context, mem types.Memory) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, mem)
	return nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.EmbedDocument(ctx, text)
}

func (f *fakeEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestSaveNewJokeWritesBothRows(t *testing.T) {
	jokes := &fakeJokes{}
	memories := &fakeMemoryWriter{}
	persister := NewPersister(jokes, memories, &fakeEmbedder{})

	if err := persister.SaveNewJoke(context.Background(), 1, "Mo", "a joke"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(jokes.inserted) != 1 {
		t.Fatalf("expected joke insert, got %d", len(jokes.inserted))
	}
	if len(memories.added) != 1 || memories.added[0].Type != types.MemoryTypeGeneratedJoke {
		t.Fatalf("expected generated_joke memory, got %+v", memories.added)
	}
}

func TestSaveNewJokeMemoryFailureDoesNotPropagate(t *testing.T) {
	jokes := &fakeJokes{}
	memories := &fakeMemoryWriter{err: fmt.Errorf("vector column missing")}
	persister := NewPersister(jokes, memories, &fakeEmbedder{})

	if err := persister.SaveNewJoke(context.Background(), 1, "Mo", "a joke"); err != nil {
		t.Fatalf("memory failure must not propagate, got %v", err)
	}
	if len(jokes.inserted) != 1 {
		t.Fatalf("joke insert must survive memory failure")
	}
}

func TestSaveNewJokeEmbedFailureDoesNotPropagate(t *testing.T) {
	jokes := &fakeJokes{}
	memories := &fakeMemoryWriter{}
	persister := NewPersister(jokes, memories, &fakeEmbedder{err: fmt.Errorf("quota exceeded")})

	if err := persister.SaveNewJoke(context.Background(), 1, "Mo", "a joke"); err != nil {
		t.Fatalf("embed failure must not propagate, got %v", err)
	}
	if len(memories.added) != 0 {
		t.Fatalf("no memory should be written when embedding fails")
	}
}

func TestSaveNewJokeInsertFailurePropagates(t *testing.T) {
	jokes := &fakeJokes{err: fmt.Errorf("disk full")}
	memories := &fakeMemoryWriter{}
	persister := NewPersister(jokes, memories, &fakeEmbedder{})

	if err := persister.SaveNewJoke(context.Background(), 1, "Mo", "a joke"); err == nil {
		t.Fatalf("expected joke insert failure to propagate")
	}
	if len(memories.added) != 0 {
		t.Fatalf("no memory should be written when the joke insert fails")
	}
}

func TestSaveCuratedMemory(t *testing.T) {
	memories := &fakeMemoryWriter{}
	persister := NewPersister(&fakeJokes{}, memories, &fakeEmbedder{})

	persister.SaveCuratedMemory(context.Background(), 3, "approved joke")
	if len(memories.added) != 1 || memories.added[0].Type != types.MemoryTypeCuratedJoke {
		t.Fatalf("expected curated memory, got %+v", memories.added)
	}
}
