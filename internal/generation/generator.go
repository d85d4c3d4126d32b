package generation

import (
	"context"

	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// MemoryRetriever supplies prior jokes used to ground prompts. An empty
// result means "no context available", never an error.
type MemoryRetriever interface {
	Retrieve(ctx context.Context, characterID int, topic string, limit int) []string
}

// Generator produces joke drafts in one of three modes, all sharing the same
// call/parse/degrade path. Every mode returns an empty slice on any failure
// so the orchestrator can decide whether zero jokes is abort-worthy.
type Generator struct {
	chat        llm.ChatClient
	memories    MemoryRetriever
	memoryLimit int
}

func NewGenerator(chat llm.ChatClient, memories MemoryRetriever, memoryLimit int) *Generator {
	if memoryLimit <= 0 {
		memoryLimit = 5
	}
	return &Generator{
		chat:        chat,
		memories:    memories,
		memoryLimit: memoryLimit,
	}
}

// GenerateAssigned writes one joke per plan entry about its assigned topic.
func (g *Generator) GenerateAssigned(ctx context.Context, plan []types.PlanEntry) []types.JokeDraft {
	if len(plan) == 0 {
		return nil
	}
	memories := make(map[int][]string, len(plan))
	for _, entry := range plan {
		memories[entry.Character.ID] = g.retrieve(ctx, entry.Character.ID, entry.Topic.Name)
	}
	return g.generate(ctx, assignedTopicPrompt{}, promptInput{Entries: plan, Memories: memories}, false)
}

// GenerateSelfSelect lets the model pick a topic per character and write the
// joke in one pass.
func (g *Generator) GenerateSelfSelect(ctx context.Context, characters []types.Character) []types.JokeDraft {
	if len(characters) == 0 {
		return nil
	}
	memories := make(map[int][]string, len(characters))
	for _, character := range characters {
		topic := ""
		if len(character.Topics) > 0 {
			topic = character.Topics[0]
		}
		memories[character.ID] = g.retrieve(ctx, character.ID, topic)
	}
	return g.generate(ctx, selfSelectPrompt{}, promptInput{Characters: characters, Memories: memories}, true)
}

// GenerateHighVolume requests count jokes for a single character in one call.
func (g *Generator) GenerateHighVolume(ctx context.Context, character types.Character, count int) []types.JokeDraft {
	memories := map[int][]string{
		character.ID: g.retrieve(ctx, character.ID, ""),
	}
	drafts := g.generate(ctx, highVolumePrompt{}, promptInput{Character: &character, Count: count, Memories: memories}, true)
	if len(drafts) > 0 && len(drafts) != count {
		log.Warnw("high volume generation returned unexpected count",
			"character_id", character.ID, "want", count, "got", len(drafts))
	}
	return drafts
}

func (g *Generator) generate(ctx context.Context, builder promptBuilder, in promptInput, requireTopic bool) []types.JokeDraft {
	system, user := builder.build(in)
	raw, err := g.chat.Complete(ctx, system, user)
	if err != nil {
		log.Warnw("joke generation call failed", "error", err.Error())
		return nil
	}
	return decodeDrafts(raw, requireTopic)
}

func (g *Generator) retrieve(ctx context.Context, characterID int, topic string) []string {
	if g.memories == nil {
		return nil
	}
	return g.memories.Retrieve(ctx, characterID, topic, g.memoryLimit)
}
