package repository

import (
	"breakout-scanner/config"
	"breakout-scanner/pkg/cache"
	"breakout-scanner/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	PriceHistoryRepo PriceHistoryRepository
	ScreenerRepo     ScreenerRepository
	ScanEntryRepo    ScanEntryRepository
	AIRepo           AIRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	aiRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		PriceHistoryRepo: NewYahooFinanceRepository(cfg, log),
		ScreenerRepo:     NewScreenerRepository(cfg, inmemoryCache, log),
		ScanEntryRepo:    NewScanEntryRepository(db, log),
		AIRepo:           aiRepo,
	}, nil
}
