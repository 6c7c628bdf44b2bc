package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"breakout-scanner/internal/dto"
	"breakout-scanner/internal/model"
	"breakout-scanner/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScanEntryRepository interface {
	Upsert(ctx context.Context, entry *model.ScanEntry) error
	UpdateStatus(ctx context.Context, symbol string, status dto.ScanStatus, errMsg string) error
	SaveResult(ctx context.Context, symbol string, important bool, result *dto.ScanResult) error
	SetImportant(ctx context.Context, symbol string, important bool) error
	Get(ctx context.Context, symbol string) (*model.ScanEntry, error)
	List(ctx context.Context) ([]model.ScanEntry, error)
	Delete(ctx context.Context, symbol string) error
	FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.ScanEntry, error)
}

type scanEntryRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanEntryRepository(db *gorm.DB, log *logger.Logger) ScanEntryRepository {
	return &scanEntryRepository{db: db, log: log}
}

func (r *scanEntryRepository) Upsert(ctx context.Context, entry *model.ScanEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"lookback_days", "status", "error_message", "updated_at"}),
	}).Create(entry).Error
}

func (r *scanEntryRepository) UpdateStatus(ctx context.Context, symbol string, status dto.ScanStatus, errMsg string) error {
	updates := map[string]interface{}{
		"status":        string(status),
		"error_message": nil,
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	return r.db.WithContext(ctx).Model(&model.ScanEntry{}).Where("symbol = ?", symbol).Updates(updates).Error
}

// SaveResult persists a completed scan. The full payload is only retained
// for important entries; everyone else keeps the slim projection. A write
// failure sheds the zone legend (the heaviest sub-field) and retries once
// before degrading to the slim row. Persistence trouble never fails the
// scan itself.
func (r *scanEntryRepository) SaveResult(ctx context.Context, symbol string, important bool, result *dto.ScanResult) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        string(dto.ScanStatusCompleted),
		"error_message": nil,
		"result":        nil,
		"last_scan_at":  now,
	}

	if !important || result == nil {
		return r.update(ctx, symbol, updates)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	updates["result"] = payload
	err = r.update(ctx, symbol, updates)
	if err == nil {
		return nil
	}
	r.log.WarnContext(ctx, "Failed to store full scan result, shedding zone legend",
		logger.StringField("symbol", symbol),
		logger.ErrorField(err))

	slim := *result
	slim.ZoneLegend = nil
	payload, err = json.Marshal(slim)
	if err != nil {
		return err
	}
	updates["result"] = payload
	err = r.update(ctx, symbol, updates)
	if err == nil {
		return nil
	}
	r.log.WarnContext(ctx, "Failed to store shed scan result, keeping slim row",
		logger.StringField("symbol", symbol),
		logger.ErrorField(err))

	updates["result"] = nil
	return r.update(ctx, symbol, updates)
}

func (r *scanEntryRepository) update(ctx context.Context, symbol string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ScanEntry{}).Where("symbol = ?", symbol).Updates(updates).Error
}

func (r *scanEntryRepository) SetImportant(ctx context.Context, symbol string, important bool) error {
	return r.db.WithContext(ctx).Model(&model.ScanEntry{}).Where("symbol = ?", symbol).
		Update("important", important).Error
}

func (r *scanEntryRepository) Get(ctx context.Context, symbol string) (*model.ScanEntry, error) {
	var entry model.ScanEntry
	err := r.db.WithContext(ctx).First(&entry, "symbol = ?", symbol).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *scanEntryRepository) List(ctx context.Context) ([]model.ScanEntry, error) {
	var entries []model.ScanEntry
	err := r.db.WithContext(ctx).Order("created_at").Find(&entries).Error
	return entries, err
}

func (r *scanEntryRepository) Delete(ctx context.Context, symbol string) error {
	return r.db.WithContext(ctx).Delete(&model.ScanEntry{}, "symbol = ?", symbol).Error
}

func (r *scanEntryRepository) FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.ScanEntry, error) {
	var entries []model.ScanEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND last_scan_at < ?", string(dto.ScanStatusCompleted), cutoff).
		Find(&entries).Error
	return entries, err
}
