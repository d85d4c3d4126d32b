package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kharazdev/joke-factory/internal/llm"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

const assignerSystemPrompt = `You match comedian personas to currently trending topics.
Pick for each comedian the single trend from their own country's list that best fits their persona.
Return ONLY a valid JSON array, with no commentary and no Markdown code fences.`

// Assigner maps each character to one trend topic from a cached snapshot via
// a single batch LLM call.
type Assigner struct {
	chat llm.ChatClient
}

func NewAssigner(chat llm.ChatClient) *Assigner {
	return &Assigner{chat: chat}
}

// AssignTopics returns the model's {characterId, assignedTopicName} pairs.
// The output length is not guaranteed to match the input length; the model
// may omit characters. Any call or parse failure degrades to an empty slice,
// which callers must treat as "assignment step failed, abort the job".
func (a *Assigner) AssignTopics(ctx context.Context, characters []types.Character, snapshot *types.TrendSnapshot) []types.TopicAssignment {
	if len(characters) == 0 || snapshot == nil || len(snapshot.Trends) == 0 {
		return nil
	}

	raw, err := a.chat.Complete(ctx, assignerSystemPrompt, buildAssignerPrompt(characters, snapshot))
	if err != nil {
		log.Warnw("topic assignment call failed", "error", err.Error())
		return nil
	}
	return decodeAssignments(raw)
}

func buildAssignerPrompt(characters []types.Character, snapshot *types.TrendSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Comedians:\n")
	for _, character := range characters {
		fmt.Fprintf(&sb, "#%d %s — country: %s — persona: %s\n", character.ID, character.Name, character.Country, character.Persona)
	}
	sb.WriteString("\nTrending topics by country:\n")
	for country, trends := range snapshot.Trends {
		fmt.Fprintf(&sb, "%s:\n", country)
		for _, trend := range trends {
			fmt.Fprintf(&sb, "- %s: %s\n", trend.Name, trend.Description)
		}
	}
	sb.WriteString("\nRespond with a JSON array of objects shaped as " +
		`{"characterId": <id>, "assignedTopicName": "<trend name>"}.`)
	return sb.String()
}

// ResolvePlan turns raw assignments into job-plan entries. The assigned trend
// is matched by exact name within the character's own country list; when no
// match exists the entry falls back to a bare trend with an empty
// description. The fallback silently masks model drift (paraphrased or
// translated trend names); the joke still gets written, just without the
// trend's context.
func ResolvePlan(characters []types.Character, snapshot *types.TrendSnapshot, assignments []types.TopicAssignment) []types.PlanEntry {
	byID := make(map[int]types.Character, len(characters))
	for _, character := range characters {
		byID[character.ID] = character
	}

	entries := make([]types.PlanEntry, 0, len(assignments))
	for _, assignment := range assignments {
		character, ok := byID[assignment.CharacterID]
		if !ok {
			continue
		}
		topic := types.Trend{Name: assignment.AssignedTopicName}
		if snapshot != nil {
			for _, trend := range snapshot.Trends[character.Country] {
				if trend.Name == assignment.AssignedTopicName {
					topic = trend
					break
				}
			}
		}
		entries = append(entries, types.PlanEntry{Character: character, Topic: topic})
	}
	return entries
}
