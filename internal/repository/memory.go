package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
)

// memoryModel maps to the memories table.
type memoryModel struct {
	ID          int
	CharacterID int
	Content     string
	Type        string
	// Embedding stores the vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (memoryModel) TableName() string {
	return "memories"
}

// MemoryRepo accesses memory data.
type MemoryRepo struct {
	db *gorm.DB
}

func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// AddMemory inserts a memory row.
func (r *MemoryRepo) AddMemory(ctx context.Context, mem types.Memory) error {
	var vector *pgvector.Vector
	if len(mem.Embedding) > 0 {
		v := pgvector.NewVector(mem.Embedding)
		vector = &v
	}
	record := memoryModel{
		CharacterID: mem.CharacterID,
		Content:     mem.Content,
		Type:        mem.Type,
		Embedding:   vector,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// SearchNearest returns the contents of the character's memories closest to
// the query embedding, ordered by vector distance ascending.
func (r *MemoryRepo) SearchNearest(ctx context.Context, characterID int, embedding []float32, limit int) ([]string, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT content
		FROM memories
		WHERE character_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2 ASC
		LIMIT $3`

	var contents []string
	if err := r.db.WithContext(ctx).
		Raw(query, characterID, pgvector.NewVector(embedding), limit).
		Scan(&contents).Error; err != nil {
		return nil, fmt.Errorf("failed to search nearest memories: %w", err)
	}
	return contents, nil
}

// DeleteByContent removes a character's memories whose content matches
// exactly. Used when the evaluation flow pulls a joke out of memory.
func (r *MemoryRepo) DeleteByContent(ctx context.Context, characterID int, content string) error {
	if err := r.db.WithContext(ctx).
		Where("character_id = ? AND content = ?", characterID, content).
		Delete(&memoryModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	return nil
}
