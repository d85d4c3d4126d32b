package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rateLimitModel maps to the daily_api_limits table, one row per action.
type rateLimitModel struct {
	ActionName         string `gorm:"primaryKey"`
	LastSuccessfulCall time.Time
}

func (rateLimitModel) TableName() string {
	return "daily_api_limits"
}

// RateLimitRepo accesses per-action cooldown timestamps.
type RateLimitRepo struct {
	db *gorm.DB
}

func NewRateLimitRepo(db *gorm.DB) *RateLimitRepo {
	return &RateLimitRepo{db: db}
}

// LastSuccess returns the last recorded success for an action, or nil when
// the action has never succeeded.
func (r *RateLimitRepo) LastSuccess(ctx context.Context, action string) (*time.Time, error) {
	var record rateLimitModel
	err := r.db.WithContext(ctx).Where("action_name = ?", action).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limit record: %w", err)
	}
	return &record.LastSuccessfulCall, nil
}

// RecordSuccess upserts the action's last successful call timestamp.
func (r *RateLimitRepo) RecordSuccess(ctx context.Context, action string, at time.Time) error {
	record := rateLimitModel{ActionName: action, LastSuccessfulCall: at}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "action_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_successful_call"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record rate limit success: %w", err)
	}
	return nil
}
