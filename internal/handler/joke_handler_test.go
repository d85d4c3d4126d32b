package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
)

type fakeCharacterReader struct {
	byID   map[int]types.Character
	byName map[string]types.Character
}

func (f *fakeCharacterReader) GetByID(ctx context.Context, id int) (*types.Character, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeCharacterReader) GetByName(ctx context.Context, name string) (*types.Character, error) {
	c, ok := f.byName[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

type fakeJokeStore struct {
	recent  []types.Joke
	cached  []types.Joke
	byID    map[int]types.Joke
	updates map[string]any
}

func (f *fakeJokeStore) ListRecent(ctx context.Context, limit int) ([]types.Joke, error) {
	return f.recent, nil
}

func (f *fakeJokeStore) ListByCharacterSince(ctx context.Context, characterName string, since time.Time) ([]types.Joke, error) {
	return f.cached, nil
}

func (f *fakeJokeStore) GetByID(ctx context.Context, id int) (*types.Joke, error) {
	j, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &j, nil
}

func (f *fakeJokeStore) Update(ctx context.Context, id int, updates map[string]any) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.updates = updates
	return nil
}

type fakeOnDemand struct {
	drafts []types.JokeDraft
}

func (f *fakeOnDemand) GenerateSelfSelect(ctx context.Context, characters []types.Character) []types.JokeDraft {
	return f.drafts
}

type fakeJokeSaver struct {
	saved   []string
	curated []string
}

func (f *fakeJokeSaver) SaveNewJoke(ctx context.Context, characterID int, characterName, content string) error {
	f.saved = append(f.saved, content)
	return nil
}

func (f *fakeJokeSaver) SaveCuratedMemory(ctx context.Context, characterID int, content string) {
	f.curated = append(f.curated, content)
}

type fakeMemoryDeleter struct {
	deleted []string
}

func (f *fakeMemoryDeleter) DeleteByContent(ctx context.Context, characterID int, content string) error {
	f.deleted = append(f.deleted, content)
	return nil
}

type fakeGenGate struct {
	allowed  bool
	recorded []string
}

func (f *fakeGenGate) CanMakeCall(ctx context.Context, action string, intervalDays int) bool {
	return f.allowed
}

func (f *fakeGenGate) RecordSuccess(ctx context.Context, action string) error {
	f.recorded = append(f.recorded, action)
	return nil
}

type jokeFixture struct {
	characters *fakeCharacterReader
	jokes      *fakeJokeStore
	generator  *fakeOnDemand
	saver      *fakeJokeSaver
	memories   *fakeMemoryDeleter
	gate       *fakeGenGate
	router     *gin.Engine
}

func newJokeFixture() *jokeFixture {
	gin.SetMode(gin.TestMode)
	f := &jokeFixture{
		characters: &fakeCharacterReader{
			byID:   map[int]types.Character{1: {ID: 1, Name: "Mo", Country: "USA"}},
			byName: map[string]types.Character{"Mo": {ID: 1, Name: "Mo", Country: "USA"}},
		},
		jokes:     &fakeJokeStore{byID: map[int]types.Joke{}},
		generator: &fakeOnDemand{},
		saver:     &fakeJokeSaver{},
		memories:  &fakeMemoryDeleter{},
		gate:      &fakeGenGate{allowed: true},
	}
	h := NewJokeHandler(f.characters, f.jokes, f.generator, f.saver, f.memories, f.gate, 1)
	r := gin.New()
	r.GET("/jokes", h.List)
	r.POST("/jokes/generate", h.Generate)
	r.PATCH("/jokes/:id", h.Evaluate)
	f.router = r
	return f
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateSavesAndReturnsJokes(t *testing.T) {
	f := newJokeFixture()
	f.generator.drafts = []types.JokeDraft{{CharacterID: 1, SelectedTopic: "cats", Content: "meow"}}

	w := doJSON(f.router, http.MethodPost, "/jokes/generate", `{"characterId":1}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(f.saver.saved) != 1 || f.saver.saved[0] != "meow" {
		t.Fatalf("expected joke to be persisted, got %v", f.saver.saved)
	}
	if len(f.gate.recorded) != 1 {
		t.Fatalf("expected gate success record, got %v", f.gate.recorded)
	}
}

func TestGenerateRateLimitedReturnsCachedJokes(t *testing.T) {
	f := newJokeFixture()
	f.gate.allowed = false
	f.jokes.cached = []types.Joke{{ID: 7, Content: "old one", CharacterName: "Mo"}}

	w := doJSON(f.router, http.MethodPost, "/jokes/generate", `{"characterId":1}`)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	var resp struct {
		Jokes []types.Joke `json:"jokes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Jokes) != 1 || resp.Jokes[0].Content != "old one" {
		t.Fatalf("expected cached jokes in 429 body, got %+v", resp.Jokes)
	}
	if len(f.saver.saved) != 0 {
		t.Fatalf("rate-limited request must not generate")
	}
}

func TestGenerateUnknownCharacter(t *testing.T) {
	f := newJokeFixture()

	w := doJSON(f.router, http.MethodPost, "/jokes/generate", `{"characterId":42}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGenerateFailureReturns500(t *testing.T) {
	f := newJokeFixture()
	// Generator degrades to an empty slice on any failure.

	w := doJSON(f.router, http.MethodPost, "/jokes/generate", `{"characterId":1}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when generation yields nothing, got %d", w.Code)
	}
}

func TestListJokes(t *testing.T) {
	f := newJokeFixture()
	f.jokes.recent = []types.Joke{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}

	w := doJSON(f.router, http.MethodGet, "/jokes", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Jokes []types.Joke `json:"jokes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Jokes) != 2 {
		t.Fatalf("expected 2 jokes, got %d", len(resp.Jokes))
	}
}

func TestEvaluateApproveCuratesMemory(t *testing.T) {
	f := newJokeFixture()
	f.jokes.byID[5] = types.Joke{ID: 5, Content: "keeper", CharacterName: "Mo", Visible: false}

	w := doJSON(f.router, http.MethodPatch, "/jokes/5", `{"visible":true,"rating":4}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(f.saver.curated) != 1 || f.saver.curated[0] != "keeper" {
		t.Fatalf("approval must curate the joke into memory, got %v", f.saver.curated)
	}
	if f.jokes.updates["visible"] != true || f.jokes.updates["rating"] != 4 {
		t.Fatalf("unexpected updates: %v", f.jokes.updates)
	}
}

func TestEvaluateHideRemovesMemory(t *testing.T) {
	f := newJokeFixture()
	f.jokes.byID[5] = types.Joke{ID: 5, Content: "dud", CharacterName: "Mo", Visible: true}

	w := doJSON(f.router, http.MethodPatch, "/jokes/5", `{"visible":false}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(f.memories.deleted) != 1 || f.memories.deleted[0] != "dud" {
		t.Fatalf("hiding must remove the joke from memory, got %v", f.memories.deleted)
	}
}

func TestEvaluateUnknownJoke(t *testing.T) {
	f := newJokeFixture()

	w := doJSON(f.router, http.MethodPatch, "/jokes/99", `{"visible":true}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEvaluateEmptyBodyRejected(t *testing.T) {
	f := newJokeFixture()
	f.jokes.byID[5] = types.Joke{ID: 5, Content: "x", CharacterName: "Mo"}

	w := doJSON(f.router, http.MethodPatch, "/jokes/5", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", w.Code)
	}
}
