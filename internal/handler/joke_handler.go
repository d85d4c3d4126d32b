package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// CharacterReader resolves characters for the joke endpoints.
type CharacterReader interface {
	GetByID(ctx context.Context, id int) (*types.Character, error)
	GetByName(ctx context.Context, name string) (*types.Character, error)
}

// JokeStore reads and updates persisted jokes.
type JokeStore interface {
	ListRecent(ctx context.Context, limit int) ([]types.Joke, error)
	ListByCharacterSince(ctx context.Context, characterName string, since time.Time) ([]types.Joke, error)
	GetByID(ctx context.Context, id int) (*types.Joke, error)
	Update(ctx context.Context, id int, updates map[string]any) error
}

// OnDemandGenerator produces jokes for a single character outside a job.
type OnDemandGenerator interface {
	GenerateSelfSelect(ctx context.Context, characters []types.Character) []types.JokeDraft
}

// JokeSaver persists a generated joke and curates memories.
type JokeSaver interface {
	SaveNewJoke(ctx context.Context, characterID int, characterName, content string) error
	SaveCuratedMemory(ctx context.Context, characterID int, content string)
}

// MemoryDeleter removes a joke from a character's memory.
type MemoryDeleter interface {
	DeleteByContent(ctx context.Context, characterID int, content string) error
}

// GenerationGate guards per-character on-demand generation.
type GenerationGate interface {
	CanMakeCall(ctx context.Context, action string, intervalDays int) bool
	RecordSuccess(ctx context.Context, action string) error
}

// JokeHandler serves the joke listing, on-demand generation, and the
// evaluation flow.
type JokeHandler struct {
	characters   CharacterReader
	jokes        JokeStore
	generator    OnDemandGenerator
	saver        JokeSaver
	memories     MemoryDeleter
	gate         GenerationGate
	intervalDays int
}

func NewJokeHandler(characters CharacterReader, jokes JokeStore, generator OnDemandGenerator, saver JokeSaver, memories MemoryDeleter, gate GenerationGate, intervalDays int) *JokeHandler {
	if intervalDays <= 0 {
		intervalDays = 1
	}
	return &JokeHandler{
		characters:   characters,
		jokes:        jokes,
		generator:    generator,
		saver:        saver,
		memories:     memories,
		gate:         gate,
		intervalDays: intervalDays,
	}
}

type generateRequest struct {
	CharacterID int `json:"characterId" binding:"required"`
}

// generationAction is the per-character rate-gate key for on-demand calls.
func generationAction(characterID int) string {
	return fmt.Sprintf("joke_generation_%d", characterID)
}

// Generate produces one joke for a single character on demand. When the
// character's cooldown has not elapsed it answers 429 with the jokes already
// generated inside the window instead of making another LLM call.
func (h *JokeHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "characterId is required"})
		return
	}

	character, err := h.characters.GetByID(c.Request.Context(), req.CharacterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
			return
		}
		log.Error("failed to load character for generation", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load character"})
		return
	}

	action := generationAction(character.ID)
	if !h.gate.CanMakeCall(c.Request.Context(), action, h.intervalDays) {
		since := time.Now().Add(-time.Duration(h.intervalDays) * 24 * time.Hour)
		cached, err := h.jokes.ListByCharacterSince(c.Request.Context(), character.Name, since)
		if err != nil {
			log.Warnw("failed to load cached jokes for rate-limited request",
				"character_id", character.ID, "error", err.Error())
		}
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message": "generation limit reached for this character, returning recent jokes",
			"jokes":   cached,
		})
		return
	}

	drafts := h.generator.GenerateSelfSelect(c.Request.Context(), []types.Character{*character})
	if len(drafts) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "joke generation failed"})
		return
	}

	results := make([]types.JobResult, 0, len(drafts))
	for _, draft := range drafts {
		if err := h.saver.SaveNewJoke(c.Request.Context(), character.ID, character.Name, draft.Content); err != nil {
			log.Warnw("failed to persist on-demand joke", "character_id", character.ID, "error", err.Error())
			continue
		}
		results = append(results, types.JobResult{
			CharacterID:   character.ID,
			CharacterName: character.Name,
			Topic:         draft.SelectedTopic,
			Content:       draft.Content,
		})
	}
	if len(results) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save generated jokes"})
		return
	}

	if err := h.gate.RecordSuccess(c.Request.Context(), action); err != nil {
		log.Warnw("failed to record generation success", "character_id", character.ID, "error", err.Error())
	}

	c.JSON(http.StatusCreated, gin.H{"message": "jokes generated", "jokes": results})
}

// List returns the newest jokes.
func (h *JokeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	jokes, err := h.jokes.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to list jokes", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list jokes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "jokes": jokes})
}

type evaluateRequest struct {
	Visible *bool   `json:"visible"`
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

// Evaluate applies the evaluation flow: visibility toggle, content edit,
// rating. Approving a joke (visible=true) also curates it into the
// character's memory; hiding it pulls it back out.
func (h *JokeHandler) Evaluate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid joke id"})
		return
	}

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if req.Visible == nil && req.Content == nil && req.Rating == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "nothing to update"})
		return
	}

	joke, err := h.jokes.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "joke not found"})
			return
		}
		log.Error("failed to load joke", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load joke"})
		return
	}

	updates := map[string]any{}
	if req.Visible != nil {
		updates["visible"] = *req.Visible
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if err := h.jokes.Update(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "joke not found"})
			return
		}
		log.Error("failed to update joke", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update joke"})
		return
	}

	if req.Visible != nil {
		h.syncMemory(c.Request.Context(), joke, req)
	}

	c.JSON(http.StatusOK, gin.H{"message": "joke updated"})
}

// syncMemory keeps the memory store aligned with a visibility change. Memory
// upkeep is best-effort; the joke update already succeeded.
func (h *JokeHandler) syncMemory(ctx context.Context, joke *types.Joke, req evaluateRequest) {
	character, err := h.characters.GetByName(ctx, joke.CharacterName)
	if err != nil {
		log.Warnw("failed to resolve character for memory sync",
			"character_name", joke.CharacterName, "error", err.Error())
		return
	}

	if *req.Visible {
		content := joke.Content
		if req.Content != nil {
			content = *req.Content
		}
		h.saver.SaveCuratedMemory(ctx, character.ID, content)
		return
	}
	if err := h.memories.DeleteByContent(ctx, character.ID, joke.Content); err != nil {
		log.Warnw("failed to remove joke from memory",
			"character_id", character.ID, "error", err.Error())
	}
}
