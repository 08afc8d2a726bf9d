package sync

import (
	"context"
	"fmt"

	"cost-sync/feature/sync/models"

	"gorm.io/gorm"
)

// History is the run-history repository.
type History struct {
	db *gorm.DB
}

// NewHistory creates a history repository on top of a database connection.
func NewHistory(db *gorm.DB) *History {
	return &History{db: db}
}

// Migrate creates or updates the history tables.
func (h *History) Migrate() error {
	if err := h.db.AutoMigrate(&models.SyncRun{}, &models.SyncRunItem{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return nil
}

// Record persists one executed run with its ledger items.
func (h *History) Record(ctx context.Context, run *models.SyncRun) error {
	if err := h.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first, without their items.
func (h *History) Recent(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []models.SyncRun
	err := h.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sync runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its full ledger.
func (h *History) Get(ctx context.Context, id uint) (*models.SyncRun, error) {
	var run models.SyncRun
	err := h.db.WithContext(ctx).
		Preload("Items").
		First(&run, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sync run %d: %w", id, err)
	}
	return &run, nil
}
