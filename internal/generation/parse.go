// Package generation builds prompts for joke generation and parses the
// model's structured output.
package generation

import (
	"encoding/json"
	"strings"

	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// stripCodeFences removes a Markdown code fence wrapper from a raw model
// response and slices out the outermost JSON array.
func stripCodeFences(raw string) string {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
		clean = strings.TrimSpace(clean)
	}
	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	return clean
}

// decodeAssignments parses topic-assigner output. Any malformed response, a
// non-array value, or an element missing characterId/assignedTopicName
// degrades to an empty slice; the caller must treat that as a failed
// assignment step, never as "zero characters need topics".
func decodeAssignments(raw string) []types.TopicAssignment {
	var elements []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &elements); err != nil {
		log.Warnw("failed to parse topic assignments", "error", err.Error())
		return nil
	}

	results := make([]types.TopicAssignment, 0, len(elements))
	for _, element := range elements {
		var assignment types.TopicAssignment
		if !decodeField(element, "characterId", &assignment.CharacterID) ||
			!decodeField(element, "assignedTopicName", &assignment.AssignedTopicName) {
			log.Warnw("topic assignment element missing required keys")
			return nil
		}
		results = append(results, assignment)
	}
	return results
}

// decodeDrafts parses generator output. requireTopic is set for the
// self-select and high-volume modes, which must include selectedTopic.
// Shape or parse failures degrade to an empty slice.
func decodeDrafts(raw string, requireTopic bool) []types.JokeDraft {
	var elements []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &elements); err != nil {
		log.Warnw("failed to parse joke drafts", "error", err.Error())
		return nil
	}

	results := make([]types.JokeDraft, 0, len(elements))
	for _, element := range elements {
		var draft types.JokeDraft
		if !decodeField(element, "characterId", &draft.CharacterID) ||
			!decodeField(element, "jokeContent", &draft.Content) {
			log.Warnw("joke draft element missing required keys")
			return nil
		}
		if requireTopic && !decodeField(element, "selectedTopic", &draft.SelectedTopic) {
			log.Warnw("joke draft element missing selectedTopic")
			return nil
		}
		if !requireTopic {
			// Optional in assigned-topic mode; ignore decode failures.
			_ = decodeField(element, "selectedTopic", &draft.SelectedTopic)
		}
		results = append(results, draft)
	}
	return results
}

func decodeField(element map[string]json.RawMessage, key string, target any) bool {
	raw, ok := element[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, target) == nil
}
