package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/unxversal/pointgate/internal/model"
)

// EventRepo is the append-only engine event log, managed by gorm.
type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) (*EventRepo, error) {
	if err := db.AutoMigrate(&model.EngineEvent{}); err != nil {
		return nil, err
	}
	return &EventRepo{db: db}, nil
}

func (r *EventRepo) AppendEvent(ctx context.Context, ev model.EngineEvent) error {
	return r.db.WithContext(ctx).Create(&ev).Error
}

// ListByUser returns a user's most recent events, newest first.
func (r *EventRepo) ListByUser(ctx context.Context, user string, limit int) ([]model.EngineEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []model.EngineEvent
	err := r.db.WithContext(ctx).
		Where("\"user\" = ?", user).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// Cleanup deletes events past the retention window.
func (r *EventRepo) Cleanup(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.EngineEvent{}).Error
}
