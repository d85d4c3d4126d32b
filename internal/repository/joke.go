package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
)

// jokeModel maps to the jokes table.
type jokeModel struct {
	ID            int
	Content       string
	CharacterName string
	Visible       bool
	Rating        *int
	CreatedAt     time.Time
}

func (jokeModel) TableName() string {
	return "jokes"
}

// JokeRepo accesses generated jokes.
type JokeRepo struct {
	db *gorm.DB
}

func NewJokeRepo(db *gorm.DB) *JokeRepo {
	return &JokeRepo{db: db}
}

// Insert stores a new joke. New jokes start visible and unrated.
func (r *JokeRepo) Insert(ctx context.Context, characterName, content string) (*types.Joke, error) {
	record := jokeModel{
		Content:       content,
		CharacterName: characterName,
		Visible:       true,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to insert joke: %w", err)
	}
	joke := jokeFromModel(record)
	return &joke, nil
}

// ListRecent returns the newest jokes, newest first.
func (r *JokeRepo) ListRecent(ctx context.Context, limit int) ([]types.Joke, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []jokeModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list jokes: %w", err)
	}
	return jokesFromModels(records), nil
}

// ListByCharacterSince returns a character's jokes created after the cutoff.
// Used to serve previously generated content on rate-limited requests.
func (r *JokeRepo) ListByCharacterSince(ctx context.Context, characterName string, since time.Time) ([]types.Joke, error) {
	var records []jokeModel
	if err := r.db.WithContext(ctx).
		Where("character_name = ? AND created_at > ?", characterName, since).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list jokes by character: %w", err)
	}
	return jokesFromModels(records), nil
}

// GetByID fetches a joke by ID.
func (r *JokeRepo) GetByID(ctx context.Context, id int) (*types.Joke, error) {
	var record jokeModel
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get joke by id: %w", err)
	}
	joke := jokeFromModel(record)
	return &joke, nil
}

// Update applies evaluation-flow changes (visibility, content, rating).
func (r *JokeRepo) Update(ctx context.Context, id int, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&jokeModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update joke: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func jokeFromModel(record jokeModel) types.Joke {
	return types.Joke{
		ID:            record.ID,
		Content:       record.Content,
		CharacterName: record.CharacterName,
		Visible:       record.Visible,
		Rating:        record.Rating,
		CreatedAt:     record.CreatedAt,
	}
}

func jokesFromModels(records []jokeModel) []types.Joke {
	results := make([]types.Joke, 0, len(records))
	for _, record := range records {
		results = append(results, jokeFromModel(record))
	}
	return results
}
