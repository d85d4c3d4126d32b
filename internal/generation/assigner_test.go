package generation

import (
	"context"
	"fmt"
	"testing"

	"github.com/kharazdev/joke-factory/internal/types"
)

type fakeChat struct {
	response string
	err      error
	lastUser string
}

func (f *fakeChat) Complete(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}

func usaSnapshot() *types.TrendSnapshot {
	return &types.TrendSnapshot{
		Trends: map[string][]types.Trend{
			"USA": {
				{Name: "T1", Description: "first trend"},
				{Name: "T2", Description: "second trend"},
			},
		},
	}
}

func usaCharacters() []types.Character {
	return []types.Character{
		{ID: 1, Name: "Mo", Country: "USA", Persona: "dry one-liners"},
		{ID: 2, Name: "Lena", Country: "USA", Persona: "absurdist rants"},
	}
}

func TestAssignTopicsParsesModelOutput(t *testing.T) {
	chat := &fakeChat{response: `[{"characterId":1,"assignedTopicName":"T1"},{"characterId":2,"assignedTopicName":"T2"}]`}
	assigner := NewAssigner(chat)

	assignments := assigner.AssignTopics(context.Background(), usaCharacters(), usaSnapshot())
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
}

func TestAssignTopicsCallFailure(t *testing.T) {
	chat := &fakeChat{err: fmt.Errorf("upstream 500")}
	assigner := NewAssigner(chat)

	if assignments := assigner.AssignTopics(context.Background(), usaCharacters(), usaSnapshot()); len(assignments) != 0 {
		t.Fatalf("expected empty assignments on call failure")
	}
}

func TestAssignTopicsNilSnapshot(t *testing.T) {
	assigner := NewAssigner(&fakeChat{})
	if assignments := assigner.AssignTopics(context.Background(), usaCharacters(), nil); len(assignments) != 0 {
		t.Fatalf("expected empty assignments without a snapshot")
	}
}

func TestResolvePlanMatchesCountryTrends(t *testing.T) {
	assignments := []types.TopicAssignment{
		{CharacterID: 1, AssignedTopicName: "T1"},
		{CharacterID: 2, AssignedTopicName: "T2"},
	}
	plan := ResolvePlan(usaCharacters(), usaSnapshot(), assignments)
	if len(plan) != 2 {
		t.Fatalf("expected 2 plan entries, got %d", len(plan))
	}
	if plan[0].Topic.Name != "T1" || plan[0].Topic.Description != "first trend" {
		t.Fatalf("unexpected resolved topic: %+v", plan[0].Topic)
	}
	if plan[1].Topic.Name != "T2" || plan[1].Topic.Description != "second trend" {
		t.Fatalf("unexpected resolved topic: %+v", plan[1].Topic)
	}
}

func TestResolvePlanFallbackOnUnknownTrendName(t *testing.T) {
	assignments := []types.TopicAssignment{
		{CharacterID: 1, AssignedTopicName: "Paraphrased Trend"},
	}
	plan := ResolvePlan(usaCharacters(), usaSnapshot(), assignments)
	if len(plan) != 1 {
		t.Fatalf("expected 1 plan entry, got %d", len(plan))
	}
	if plan[0].Topic.Name != "Paraphrased Trend" || plan[0].Topic.Description != "" {
		t.Fatalf("expected bare fallback trend, got %+v", plan[0].Topic)
	}
}

func TestResolvePlanIgnoresOtherCountriesTrends(t *testing.T) {
	snapshot := &types.TrendSnapshot{
		Trends: map[string][]types.Trend{
			"Canada": {{Name: "T1", Description: "canadian trend"}},
		},
	}
	plan := ResolvePlan(usaCharacters(), snapshot, []types.TopicAssignment{
		{CharacterID: 1, AssignedTopicName: "T1"},
	})
	if len(plan) != 1 {
		t.Fatalf("expected 1 plan entry, got %d", len(plan))
	}
	// Same trend name in another country must not match.
	if plan[0].Topic.Description != "" {
		t.Fatalf("expected empty description for cross-country name hit, got %+v", plan[0].Topic)
	}
}

func TestResolvePlanSkipsUnknownCharacters(t *testing.T) {
	plan := ResolvePlan(usaCharacters(), usaSnapshot(), []types.TopicAssignment{
		{CharacterID: 99, AssignedTopicName: "T1"},
	})
	if len(plan) != 0 {
		t.Fatalf("expected unknown character to be skipped, got %d entries", len(plan))
	}
}
