package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// CharacterStore is the CRUD surface over character personas.
type CharacterStore interface {
	List(ctx context.Context) ([]types.Character, error)
	GetByID(ctx context.Context, id int) (*types.Character, error)
	Create(ctx context.Context, c types.Character) (*types.Character, error)
	Update(ctx context.Context, c types.Character) error
}

// CharacterHandler serves persona management. Personas are never deleted;
// deactivation removes them from job rosters instead.
type CharacterHandler struct {
	characters CharacterStore
}

func NewCharacterHandler(characters CharacterStore) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

type characterRequest struct {
	Name       string   `json:"name" binding:"required"`
	Avatar     string   `json:"avatar"`
	Bio        string   `json:"bio"`
	Persona    string   `json:"persona" binding:"required"`
	Country    string   `json:"country" binding:"required"`
	Topics     []string `json:"topics"`
	IsActive   *bool    `json:"is_active"`
	CategoryID int      `json:"category_id"`
}

// List returns every character.
func (h *CharacterHandler) List(c *gin.Context) {
	characters, err := h.characters.List(c.Request.Context())
	if err != nil {
		log.Error("failed to list characters", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list characters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "characters": characters})
}

// Get returns one character by id.
func (h *CharacterHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid character id"})
		return
	}
	character, err := h.characters.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
			return
		}
		log.Error("failed to get character", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to get character"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "character": character})
}

// Create adds a new persona. New characters default to active.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, persona and country are required"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	created, err := h.characters.Create(c.Request.Context(), types.Character{
		Name:       req.Name,
		Avatar:     req.Avatar,
		Bio:        req.Bio,
		Persona:    req.Persona,
		Country:    req.Country,
		Topics:     req.Topics,
		IsActive:   active,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		log.Error("failed to create character", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create character"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "character created", "character": created})
}

// Update overwrites a persona's mutable fields.
func (h *CharacterHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid character id"})
		return
	}

	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, persona and country are required"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	err = h.characters.Update(c.Request.Context(), types.Character{
		ID:         id,
		Name:       req.Name,
		Avatar:     req.Avatar,
		Bio:        req.Bio,
		Persona:    req.Persona,
		Country:    req.Country,
		Topics:     req.Topics,
		IsActive:   active,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
			return
		}
		log.Error("failed to update character", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update character"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "character updated"})
}
