// Package types defines the domain model shared across the pipeline.
package types

import "time"

// Character is a comedian persona. Personas are never deleted by the
// pipeline; the active flag controls roster membership.
type Character struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	Bio        string    `json:"bio"`
	// Persona is the free-text instruction steering the model's voice.
	Persona    string    `json:"persona"`
	Country    string    `json:"country"`
	// Topics are the character's standing topic pillars.
	Topics     []string  `json:"topics"`
	IsActive   bool      `json:"is_active"`
	CategoryID int       `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Category groups characters for category-scoped jobs.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Trend is a single topic inside a country's trend list.
type Trend struct {
	Name        string `json:"trend_name"`
	Description string `json:"description"`
}

// TrendSnapshot is an immutable, timestamped map of country to trend list.
// The pipeline always reads the most recent snapshot; history accumulates.
type TrendSnapshot struct {
	ID        int                `json:"id"`
	Trends    map[string][]Trend `json:"trends"`
	CreatedAt time.Time          `json:"created_at"`
}

// TopicAssignment is the raw model output binding a character to a trend
// name. It lives only in memory, bridging assignment into generation.
type TopicAssignment struct {
	CharacterID       int    `json:"characterId"`
	AssignedTopicName string `json:"assignedTopicName"`
}

// PlanEntry is one resolved {character, trend} pair of a job plan.
type PlanEntry struct {
	Character Character `json:"character"`
	Topic     Trend     `json:"topic"`
}

// JokeDraft is one element of a generator response before persistence.
// SelectedTopic is empty in assigned-topic mode.
type JokeDraft struct {
	CharacterID   int    `json:"characterId"`
	SelectedTopic string `json:"selectedTopic,omitempty"`
	Content       string `json:"jokeContent"`
}

// Joke is a persisted generated joke. The evaluation UI may toggle
// visibility, edit content, or rate it; the pipeline never deletes jokes.
type Joke struct {
	ID            int       `json:"id"`
	Content       string    `json:"content"`
	CharacterName string    `json:"character_name"`
	Visible       bool      `json:"visible"`
	Rating        *int      `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	// MemoryTypeSeedJoke is a hand-written example stored at seed time.
	MemoryTypeSeedJoke = "seed_joke"
	// MemoryTypeGeneratedJoke is written right after generation.
	MemoryTypeGeneratedJoke = "generated_joke"
	// MemoryTypeCuratedJoke is written when a joke is approved.
	MemoryTypeCuratedJoke = "curated_generated_joke"
)

// Memory is a stored joke (or seed example) with a vector embedding, used to
// ground future generations and avoid repetition.
type Memory struct {
	ID          int       `json:"id"`
	CharacterID int       `json:"character_id"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobResult is one generated joke as reported in the completion event.
type JobResult struct {
	CharacterID   int    `json:"characterId"`
	CharacterName string `json:"characterName"`
	Topic         string `json:"topic,omitempty"`
	Content       string `json:"content"`
}
