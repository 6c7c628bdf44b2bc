package service

import (
	"breakout-scanner/config"
	"breakout-scanner/internal/repository"
	"breakout-scanner/pkg/logger"
)

type Service struct {
	ScannerService ScannerService
	Scheduler      *Scheduler
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	resultCache *ResultCache,
	notifier Notifier,
) *Service {
	scanner := NewScannerService(cfg, log, repo, resultCache, notifier)
	return &Service{
		ScannerService: scanner,
		Scheduler:      NewScheduler(cfg, log, repo, scanner),
	}
}
