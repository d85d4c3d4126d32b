package generation

import "testing"

func TestDecodeDraftsPlain(t *testing.T) {
	raw := `[{"characterId":1,"jokeContent":"why did the gopher cross the road"}]`
	drafts := decodeDrafts(raw, false)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].CharacterID != 1 || drafts[0].Content == "" {
		t.Fatalf("unexpected draft: %+v", drafts[0])
	}
}

func TestDecodeDraftsStripsCodeFences(t *testing.T) {
	raw := "```json\n[{\"characterId\":2,\"selectedTopic\":\"robots\",\"jokeContent\":\"beep\"}]\n```"
	drafts := decodeDrafts(raw, true)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].SelectedTopic != "robots" {
		t.Fatalf("unexpected topic: %s", drafts[0].SelectedTopic)
	}
}

func TestDecodeDraftsInvalidJSON(t *testing.T) {
	if drafts := decodeDrafts("the model had a bad day", false); len(drafts) != 0 {
		t.Fatalf("expected empty result for invalid JSON, got %d", len(drafts))
	}
}

func TestDecodeDraftsObjectInsteadOfArray(t *testing.T) {
	if drafts := decodeDrafts(`{"characterId":1,"jokeContent":"x"}`, false); len(drafts) != 0 {
		t.Fatalf("expected empty result for non-array JSON, got %d", len(drafts))
	}
}

func TestDecodeDraftsMissingRequiredKey(t *testing.T) {
	raw := `[{"characterId":1,"jokeContent":"ok"},{"characterId":2}]`
	if drafts := decodeDrafts(raw, false); len(drafts) != 0 {
		t.Fatalf("expected empty result when any element misses a key, got %d", len(drafts))
	}
}

func TestDecodeDraftsMissingTopicWhenRequired(t *testing.T) {
	raw := `[{"characterId":1,"jokeContent":"ok"}]`
	if drafts := decodeDrafts(raw, true); len(drafts) != 0 {
		t.Fatalf("expected empty result when selectedTopic is required but missing")
	}
}

func TestDecodeAssignments(t *testing.T) {
	raw := `[{"characterId":1,"assignedTopicName":"T1"},{"characterId":2,"assignedTopicName":"T2"}]`
	assignments := decodeAssignments(raw)
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments[1].AssignedTopicName != "T2" {
		t.Fatalf("unexpected assignment: %+v", assignments[1])
	}
}

func TestDecodeAssignmentsMissingKey(t *testing.T) {
	raw := `[{"characterId":1}]`
	if assignments := decodeAssignments(raw); len(assignments) != 0 {
		t.Fatalf("expected empty result for missing assignedTopicName")
	}
}

func TestDecodeAssignmentsNotJSON(t *testing.T) {
	if assignments := decodeAssignments("Sure! Here are the topics:"); len(assignments) != 0 {
		t.Fatalf("expected empty result for non-JSON response")
	}
}

func TestStripCodeFencesPassThrough(t *testing.T) {
	raw := `[{"a":1}]`
	if got := stripCodeFences(raw); got != raw {
		t.Fatalf("expected pass-through, got %q", got)
	}
}

func TestStripCodeFencesWithProse(t *testing.T) {
	raw := "Here you go:\n[{\"a\":1}]\nHope that helps!"
	if got := stripCodeFences(raw); got != `[{"a":1}]` {
		t.Fatalf("expected array slice, got %q", got)
	}
}
