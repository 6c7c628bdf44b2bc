package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"breakout-scanner/config"
	"breakout-scanner/internal/repository"
	"breakout-scanner/pkg/logger"
	"breakout-scanner/pkg/utils"
)

// Scheduler periodically re-enqueues completed scans whose results have
// gone stale, then kicks the scanner if it is idle.
type Scheduler struct {
	cfg     *config.Config
	log     *logger.Logger
	repo    *repository.Repository
	scanner ScannerService
	cron    *cron.Cron
}

func NewScheduler(cfg *config.Config, log *logger.Logger, repo *repository.Repository, scanner ScannerService) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		log:     log,
		repo:    repo,
		scanner: scanner,
		cron:    cron.New(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Scheduler.RescanCron, func() {
		utils.GoSafe(func() {
			s.rescanStale(ctx)
		})
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.InfoContext(ctx, "Rescan scheduler started",
		logger.StringField("cron", s.cfg.Scheduler.RescanCron))

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (s *Scheduler) rescanStale(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.Scheduler.RescanMaxAge)
	stale, err := s.repo.ScanEntryRepo.FindCompletedBefore(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list stale scan entries", logger.ErrorField(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	symbols := make([]string, 0, len(stale))
	for _, entry := range stale {
		symbols = append(symbols, entry.Symbol)
	}

	queued := s.scanner.Enqueue(ctx, symbols, 0)
	s.log.InfoContext(ctx, "Re-enqueued stale symbols",
		logger.IntField("stale", len(stale)),
		logger.IntField("queued", queued))

	if queued > 0 {
		if err := s.scanner.Start(ctx); err != nil {
			s.log.DebugContext(ctx, "Scanner already running, rescan will piggyback", logger.ErrorField(err))
		}
	}
}
