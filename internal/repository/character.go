package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
)

// characterModel maps to the characters table.
type characterModel struct {
	ID         int
	Name       string
	Avatar     string
	Bio        string
	Persona    string
	Country    string
	// Topics are the character's topic pillars, stored as JSONB.
	Topics     json.RawMessage `gorm:"type:jsonb"`
	IsActive   bool
	CategoryID int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// CharacterRepo accesses character data.
type CharacterRepo struct {
	db *gorm.DB
}

func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// ListActive returns every active character.
func (r *CharacterRepo) ListActive(ctx context.Context) ([]types.Character, error) {
	var records []characterModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list active characters: %w", err)
	}
	return charactersFromModels(records), nil
}

// ListActiveByCategory returns active characters in one category.
func (r *CharacterRepo) ListActiveByCategory(ctx context.Context, categoryID int) ([]types.Character, error) {
	var records []characterModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND category_id = ?", true, categoryID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters by category: %w", err)
	}
	return charactersFromModels(records), nil
}

// ListTop returns active characters ranked by their count of visible jokes.
func (r *CharacterRepo) ListTop(ctx context.Context, limit int) ([]types.Character, error) {
	if limit <= 0 {
		limit = 5
	}
	var records []characterModel
	query := `
		SELECT c.*
		FROM characters c
		LEFT JOIN jokes j ON j.character_name = c.name AND j.visible = TRUE
		WHERE c.is_active = TRUE
		GROUP BY c.id
		ORDER BY COUNT(j.id) DESC, c.id ASC
		LIMIT $1`
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list top characters: %w", err)
	}
	return charactersFromModels(records), nil
}

// List returns every character, active or not.
func (r *CharacterRepo) List(ctx context.Context) ([]types.Character, error) {
	var records []characterModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return charactersFromModels(records), nil
}

// GetByID fetches a character by ID.
func (r *CharacterRepo) GetByID(ctx context.Context, id int) (*types.Character, error) {
	var record characterModel
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get character by id: %w", err)
	}
	c := characterFromModel(record)
	return &c, nil
}

// GetByName fetches a character by its unique name. Jokes reference their
// author by name, so the evaluation flow resolves characters this way.
func (r *CharacterRepo) GetByName(ctx context.Context, name string) (*types.Character, error) {
	var record characterModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to get character by name: %w", err)
	}
	c := characterFromModel(record)
	return &c, nil
}

// Create inserts a new character and returns it with its assigned ID.
func (r *CharacterRepo) Create(ctx context.Context, c types.Character) (*types.Character, error) {
	topics, err := marshalJSON(c.Topics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode character topics: %w", err)
	}
	record := characterModel{
		Name:       c.Name,
		Avatar:     c.Avatar,
		Bio:        c.Bio,
		Persona:    c.Persona,
		Country:    c.Country,
		Topics:     topics,
		IsActive:   c.IsActive,
		CategoryID: c.CategoryID,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to insert character: %w", err)
	}
	created := characterFromModel(record)
	return &created, nil
}

// Update overwrites an existing character's mutable fields.
func (r *CharacterRepo) Update(ctx context.Context, c types.Character) error {
	topics, err := marshalJSON(c.Topics)
	if err != nil {
		return fmt.Errorf("failed to encode character topics: %w", err)
	}
	updates := map[string]any{
		"name":        c.Name,
		"avatar":      c.Avatar,
		"bio":         c.Bio,
		"persona":     c.Persona,
		"country":     c.Country,
		"topics":      topics,
		"is_active":   c.IsActive,
		"category_id": c.CategoryID,
		"updated_at":  time.Now(),
	}
	result := r.db.WithContext(ctx).Model(&characterModel{}).Where("id = ?", c.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update character: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Countries returns the distinct countries of active characters.
func (r *CharacterRepo) Countries(ctx context.Context) ([]string, error) {
	var countries []string
	if err := r.db.WithContext(ctx).
		Model(&characterModel{}).
		Where("is_active = ? AND country <> ''", true).
		Distinct().
		Order("country ASC").
		Pluck("country", &countries).Error; err != nil {
		return nil, fmt.Errorf("failed to list character countries: %w", err)
	}
	return countries, nil
}

func characterFromModel(record characterModel) types.Character {
	var topics []string
	_ = unmarshalJSON(record.Topics, &topics)
	return types.Character{
		ID:         record.ID,
		Name:       record.Name,
		Avatar:     record.Avatar,
		Bio:        record.Bio,
		Persona:    record.Persona,
		Country:    record.Country,
		Topics:     topics,
		IsActive:   record.IsActive,
		CategoryID: record.CategoryID,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func charactersFromModels(records []characterModel) []types.Character {
	results := make([]types.Character, 0, len(records))
	for _, record := range records {
		results = append(results, characterFromModel(record))
	}
	return results
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
