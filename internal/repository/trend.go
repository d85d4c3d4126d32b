package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kharazdev/joke-factory/internal/types"
)

// trendModel maps to the daily_trends table. Rows are immutable; the latest
// row wins and history accumulates.
type trendModel struct {
	ID        int
	Trends    json.RawMessage `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (trendModel) TableName() string {
	return "daily_trends"
}

// TrendRepo accesses cached trend snapshots.
type TrendRepo struct {
	db *gorm.DB
}

func NewTrendRepo(db *gorm.DB) *TrendRepo {
	return &TrendRepo{db: db}
}

// Latest returns the most recent snapshot, or nil when none exists.
func (r *TrendRepo) Latest(ctx context.Context) (*types.TrendSnapshot, error) {
	var record trendModel
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trend snapshot: %w", err)
	}

	var trends map[string][]types.Trend
	if err := unmarshalJSON(record.Trends, &trends); err != nil {
		return nil, fmt.Errorf("failed to decode trend snapshot: %w", err)
	}
	return &types.TrendSnapshot{
		ID:        record.ID,
		Trends:    trends,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Insert stores a new snapshot row.
func (r *TrendRepo) Insert(ctx context.Context, trends map[string][]types.Trend) error {
	raw, err := marshalJSON(trends)
	if err != nil {
		return fmt.Errorf("failed to encode trend snapshot: %w", err)
	}
	record := trendModel{Trends: raw}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert trend snapshot: %w", err)
	}
	return nil
}
