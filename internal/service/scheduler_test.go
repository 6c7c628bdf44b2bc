package service

import (
	"context"
	"testing"
	"time"

	"breakout-scanner/internal/dto"
	"breakout-scanner/internal/model"
	"breakout-scanner/internal/repository"
	"breakout-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type staleFinderRepo struct {
	*fakeScanEntryRepo
	stale []model.ScanEntry
}

func (f *staleFinderRepo) FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.ScanEntry, error) {
	return f.stale, nil
}

func TestScheduler_RescanStaleReenqueuesAndStarts(t *testing.T) {
	priceRepo := &fakePriceRepo{series: map[string][]dto.PriceBar{
		"OLDA": breakoutSeries(),
		"OLDB": breakoutSeries(),
	}}
	entryRepo := &staleFinderRepo{
		fakeScanEntryRepo: newFakeScanEntryRepo(),
		stale: []model.ScanEntry{
			{Symbol: "OLDA", LookbackDays: 365, Status: string(dto.ScanStatusCompleted)},
			{Symbol: "OLDB", LookbackDays: 365, Status: string(dto.ScanStatusCompleted)},
		},
	}
	repo := &repository.Repository{
		PriceHistoryRepo: priceRepo,
		ScreenerRepo:     &fakeScreenerRepo{},
		ScanEntryRepo:    entryRepo,
		AIRepo:           &fakeAIRepo{},
	}

	svc := NewService(testConfig(), logger.NewNop(), repo, NewResultCache(time.Minute, time.Minute, 100), nil)
	scanner := svc.ScannerService.(*scannerService)

	svc.Scheduler.rescanStale(context.Background())
	waitIdle(t, scanner)

	snapshot := scanner.Snapshot()
	assert.Len(t, snapshot.Entries, 2)
	for _, entry := range snapshot.Entries {
		assert.Equal(t, dto.ScanStatusCompleted, entry.Status)
	}
}

func TestScheduler_RescanStaleNoWork(t *testing.T) {
	repo := &repository.Repository{
		PriceHistoryRepo: &fakePriceRepo{},
		ScreenerRepo:     &fakeScreenerRepo{},
		ScanEntryRepo:    newFakeScanEntryRepo(),
		AIRepo:           &fakeAIRepo{},
	}
	svc := NewService(testConfig(), logger.NewNop(), repo, NewResultCache(time.Minute, time.Minute, 100), nil)

	// No stale entries: nothing is queued and the scanner stays idle.
	svc.Scheduler.rescanStale(context.Background())
	assert.Equal(t, dto.RunStateIdle, svc.ScannerService.Snapshot().State)
	assert.Empty(t, svc.ScannerService.Snapshot().Entries)
}
