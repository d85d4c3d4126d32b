package generation

import (
	"fmt"
	"strings"

	"github.com/kharazdev/joke-factory/internal/types"
)

// promptInput carries everything a builder variant may need. Each mode reads
// only the fields relevant to it.
type promptInput struct {
	// Entries is the resolved job plan for assigned-topic mode.
	Entries []types.PlanEntry
	// Characters is the roster for self-select mode.
	Characters []types.Character
	// Character and Count drive high-volume mode.
	Character *types.Character
	Count     int
	// Memories holds per-character prior jokes used to avoid repetition.
	Memories map[int][]string
}

// promptBuilder is the single strategy interface behind all generator modes.
type promptBuilder interface {
	build(in promptInput) (system, user string)
}

const generatorSystemPrompt = `You are a comedy writing engine for a roster of fictional comedian personas.
Write jokes strictly in each persona's voice. Never reuse a joke the persona has already told.
Return ONLY a valid JSON array, with no commentary and no Markdown code fences.`

// assignedTopicPrompt builds the batch prompt for pre-resolved topics.
type assignedTopicPrompt struct{}

func (assignedTopicPrompt) build(in promptInput) (string, string) {
	var sb strings.Builder
	sb.WriteString("Write exactly one joke per comedian about their assigned topic.\n\n")
	for _, entry := range in.Entries {
		writeCharacterProfile(&sb, entry.Character, in.Memories[entry.Character.ID])
		fmt.Fprintf(&sb, "Assigned topic: %s", entry.Topic.Name)
		if entry.Topic.Description != "" {
			fmt.Fprintf(&sb, " (%s)", entry.Topic.Description)
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString(`Respond with a JSON array of objects shaped as {"characterId": <id>, "jokeContent": "<joke>"}.`)
	return generatorSystemPrompt, sb.String()
}

// selfSelectPrompt asks the model to both pick a topic and write the joke.
type selfSelectPrompt struct{}

func (selfSelectPrompt) build(in promptInput) (string, string) {
	var sb strings.Builder
	sb.WriteString("For each comedian below, pick one topic that fits their persona and write one joke about it.\n\n")
	for _, character := range in.Characters {
		writeCharacterProfile(&sb, character, in.Memories[character.ID])
		sb.WriteString("\n")
	}
	sb.WriteString(`Respond with a JSON array of objects shaped as {"characterId": <id>, "selectedTopic": "<topic>", "jokeContent": "<joke>"}.`)
	return generatorSystemPrompt, sb.String()
}

// highVolumePrompt builds the single-character, large-N brainstorm prompt.
type highVolumePrompt struct{}

func (highVolumePrompt) build(in promptInput) (string, string) {
	var sb strings.Builder
	character := in.Character
	count := in.Count
	if count <= 0 {
		count = 100
	}
	topicCount := count / 5
	if topicCount < 1 {
		topicCount = 1
	}
	fmt.Fprintf(&sb, "Brainstorm %d distinct topics for the comedian below, then write 5 jokes for each topic, %d jokes in total.\n\n", topicCount, count)
	writeCharacterProfile(&sb, *character, in.Memories[character.ID])
	fmt.Fprintf(&sb, "\nRespond with a JSON array of exactly %d objects shaped as "+
		`{"characterId": %d, "selectedTopic": "<topic>", "jokeContent": "<joke>"}.`, count, character.ID)
	return generatorSystemPrompt, sb.String()
}

func writeCharacterProfile(sb *strings.Builder, character types.Character, memories []string) {
	fmt.Fprintf(sb, "Comedian #%d: %s (%s)\n", character.ID, character.Name, character.Country)
	if character.Bio != "" {
		fmt.Fprintf(sb, "Bio: %s\n", character.Bio)
	}
	fmt.Fprintf(sb, "Persona: %s\n", character.Persona)
	if len(character.Topics) > 0 {
		fmt.Fprintf(sb, "Topic pillars: %s\n", strings.Join(character.Topics, ", "))
	}
	if len(memories) > 0 {
		sb.WriteString("Jokes already told (do not repeat):\n")
		for _, memory := range memories {
			fmt.Fprintf(sb, "- %s\n", memory)
		}
	}
}
