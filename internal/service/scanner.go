package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"breakout-scanner/config"
	"breakout-scanner/internal/analysis"
	"breakout-scanner/internal/dto"
	"breakout-scanner/internal/model"
	"breakout-scanner/internal/repository"
	"breakout-scanner/pkg/logger"
	"breakout-scanner/pkg/utils"
)

// Notifier receives completed scan entries. Implementations must not
// block the control loop for long.
type Notifier interface {
	NotifyScanResult(ctx context.Context, entry dto.QueueEntry)
}

type ScannerService interface {
	Enqueue(ctx context.Context, symbols []string, lookbackDays int) int
	EnqueueRanked(ctx context.Context, limit, lookbackDays int) (int, error)
	Start(ctx context.Context) error
	Pause()
	Resume()
	Clear(ctx context.Context)
	Remove(ctx context.Context, symbol string) error
	MarkImportant(ctx context.Context, symbol string, important bool) error
	Snapshot() dto.QueueSnapshot
	GetEntry(ctx context.Context, symbol string) (*dto.QueueEntry, error)
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.ScanResult, error)
	Summarize(ctx context.Context, symbol string) (string, error)
	Restore(ctx context.Context) error
}

// errRunAborted wraps a 5xx-equivalent upstream failure; it stops the
// whole run instead of moving on to the next symbol.
var errRunAborted = errors.New("scan run aborted by upstream server error")

type scannerService struct {
	cfg         *config.Config
	log         *logger.Logger
	repo        *repository.Repository
	resultCache *ResultCache
	notifier    Notifier

	// All queue state below is guarded by mu. The control loop is the
	// only goroutine that mutates entry results and the result cache,
	// which keeps result writes serial per the single-consumer design.
	mu       sync.Mutex
	state    dto.RunState
	paused   bool
	inFlight string
	entries  map[string]*dto.QueueEntry
	pending  []string
	all      []string
}

func NewScannerService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	resultCache *ResultCache,
	notifier Notifier,
) ScannerService {
	return &scannerService{
		cfg:         cfg,
		log:         log,
		repo:        repo,
		resultCache: resultCache,
		notifier:    notifier,
		state:       dto.RunStateIdle,
		entries:     make(map[string]*dto.QueueEntry),
	}
}

// Enqueue adds symbols to the scan queue, resetting completed or errored
// entries to pending. Returns how many symbols were (re)queued.
func (s *scannerService) Enqueue(ctx context.Context, symbols []string, lookbackDays int) int {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Scanner.DefaultLookbackDays
	}

	s.mu.Lock()
	var toPersist []dto.QueueEntry
	for _, raw := range symbols {
		symbol := utils.NormalizeSymbol(raw)
		if symbol == "" {
			continue
		}
		if entry, exists := s.entries[symbol]; exists {
			switch entry.Status {
			case dto.ScanStatusPending, dto.ScanStatusQueued, dto.ScanStatusLoading:
				continue
			}
			entry.Status = dto.ScanStatusPending
			entry.LookbackDays = lookbackDays
			entry.Error = ""
			s.pending = append(s.pending, symbol)
			toPersist = append(toPersist, *entry)
			continue
		}
		entry := &dto.QueueEntry{
			Symbol:       symbol,
			LookbackDays: lookbackDays,
			Status:       dto.ScanStatusPending,
		}
		s.entries[symbol] = entry
		s.pending = append(s.pending, symbol)
		s.all = append(s.all, symbol)
		toPersist = append(toPersist, *entry)
	}
	queued := len(toPersist)
	s.mu.Unlock()

	for _, entry := range toPersist {
		if err := s.repo.ScanEntryRepo.Upsert(ctx, &model.ScanEntry{
			Symbol:       entry.Symbol,
			LookbackDays: entry.LookbackDays,
			Status:       string(entry.Status),
		}); err != nil {
			s.log.WarnContext(ctx, "Failed to persist queue entry",
				logger.StringField("symbol", entry.Symbol),
				logger.ErrorField(err))
		}
	}
	return queued
}

// EnqueueRanked seeds the queue from the screener's ranked symbol list.
func (s *scannerService) EnqueueRanked(ctx context.Context, limit, lookbackDays int) (int, error) {
	symbols, err := s.repo.ScreenerRepo.GetRankedSymbols(ctx, limit)
	if err != nil {
		return 0, err
	}
	return s.Enqueue(ctx, symbols, lookbackDays), nil
}

// Start launches the control loop when idle. The loop owns all result
// mutation; callers only observe entry state transitions.
func (s *scannerService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != dto.RunStateIdle {
		s.mu.Unlock()
		return fmt.Errorf("scan already running")
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("scan queue is empty")
	}
	s.state = dto.RunStateScanning
	s.mu.Unlock()

	utils.GoSafe(func() {
		s.run(ctx)
	})
	return nil
}

func (s *scannerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == dto.RunStateScanning {
		s.paused = true
	}
}

func (s *scannerService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Clear discards all pending work. The in-flight computation is allowed
// to finish; its result is discarded because its entry no longer exists.
func (s *scannerService) Clear(ctx context.Context) {
	s.mu.Lock()
	removed := make([]string, 0, len(s.pending))
	for _, symbol := range s.pending {
		delete(s.entries, symbol)
		removed = append(removed, symbol)
	}
	s.pending = nil
	if s.inFlight != "" {
		delete(s.entries, s.inFlight)
		removed = append(removed, s.inFlight)
	}
	s.mu.Unlock()

	for _, symbol := range removed {
		if err := s.repo.ScanEntryRepo.Delete(ctx, symbol); err != nil {
			s.log.WarnContext(ctx, "Failed to delete cleared entry",
				logger.StringField("symbol", symbol),
				logger.ErrorField(err))
		}
	}
}

func (s *scannerService) Remove(ctx context.Context, symbol string) error {
	symbol = utils.NormalizeSymbol(symbol)

	s.mu.Lock()
	if _, exists := s.entries[symbol]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("symbol %s is not in the queue", symbol)
	}
	delete(s.entries, symbol)
	for i, pending := range s.pending {
		if pending == symbol {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return s.repo.ScanEntryRepo.Delete(ctx, symbol)
}

func (s *scannerService) MarkImportant(ctx context.Context, symbol string, important bool) error {
	symbol = utils.NormalizeSymbol(symbol)

	s.mu.Lock()
	entry, exists := s.entries[symbol]
	if exists {
		entry.Important = important
	}
	s.mu.Unlock()

	if !exists {
		stored, err := s.repo.ScanEntryRepo.Get(ctx, symbol)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("symbol %s is not in the queue", symbol)
		}
	}

	return s.repo.ScanEntryRepo.SetImportant(ctx, symbol, important)
}

func (s *scannerService) Snapshot() dto.QueueSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := dto.QueueSnapshot{
		State:    s.state,
		InFlight: s.inFlight,
	}
	if s.paused && s.state == dto.RunStateScanning {
		snapshot.State = dto.RunStatePaused
	}
	for _, symbol := range s.all {
		if entry, exists := s.entries[symbol]; exists {
			snapshot.Entries = append(snapshot.Entries, *entry)
		}
	}
	return snapshot
}

func (s *scannerService) GetEntry(ctx context.Context, symbol string) (*dto.QueueEntry, error) {
	symbol = utils.NormalizeSymbol(symbol)

	s.mu.Lock()
	if entry, exists := s.entries[symbol]; exists {
		copied := *entry
		s.mu.Unlock()
		return &copied, nil
	}
	s.mu.Unlock()

	stored, err := s.repo.ScanEntryRepo.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	return entryFromModel(stored), nil
}

// RunBacktest runs the full pipeline for one symbol outside the queue,
// reusing the result cache.
func (s *scannerService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.ScanResult, error) {
	lookbackDays := req.LookbackDays
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Scanner.DefaultLookbackDays
	}
	return s.computeScan(ctx, utils.NormalizeSymbol(req.Symbol), lookbackDays)
}

func (s *scannerService) Summarize(ctx context.Context, symbol string) (string, error) {
	entry, err := s.GetEntry(ctx, symbol)
	if err != nil {
		return "", err
	}
	if entry == nil || entry.Result == nil {
		return "", fmt.Errorf("no completed scan for %s", utils.NormalizeSymbol(symbol))
	}
	return s.repo.AIRepo.SummarizeScan(ctx, entry.Result)
}

// Restore rehydrates the queue from persisted entries after a restart.
// Entries caught mid-scan go back to pending.
func (s *scannerService) Restore(ctx context.Context) error {
	stored, err := s.repo.ScanEntryRepo.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range stored {
		entry := entryFromModel(&stored[i])
		switch entry.Status {
		case dto.ScanStatusPending, dto.ScanStatusQueued, dto.ScanStatusLoading:
			entry.Status = dto.ScanStatusPending
			s.pending = append(s.pending, entry.Symbol)
		}
		s.entries[entry.Symbol] = entry
		s.all = append(s.all, entry.Symbol)
	}
	return nil
}

// run is the single-consumer control loop: exactly one symbol is in
// flight at a time, results are persisted in queue order, and pause is
// honored between symbols rather than pre-emptively.
func (s *scannerService) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.state = dto.RunStateIdle
		s.inFlight = ""
		s.mu.Unlock()
	}()

	for {
		if !utils.ShouldContinue(ctx, s.log) {
			return
		}
		if !s.waitWhilePaused(ctx) {
			return
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		symbol := s.pending[0]
		s.pending = s.pending[1:]
		entry, exists := s.entries[symbol]
		if !exists {
			s.mu.Unlock()
			continue
		}
		entry.Status = dto.ScanStatusQueued
		s.inFlight = symbol
		lookbackDays := entry.LookbackDays
		s.mu.Unlock()

		err := s.scanOne(ctx, symbol, lookbackDays)

		s.mu.Lock()
		s.inFlight = ""
		s.mu.Unlock()

		if errors.Is(err, errRunAborted) {
			s.log.WarnContext(ctx, "Scan run aborted, leaving remaining symbols pending",
				logger.StringField("symbol", symbol))
			return
		}
	}
}

func (s *scannerService) waitWhilePaused(ctx context.Context) bool {
	for {
		s.mu.Lock()
		paused := s.paused
		s.mu.Unlock()
		if !paused {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// scanOne runs the full pipeline for one symbol and records the outcome
// on its entry. Only a 5xx-equivalent upstream failure escapes as
// errRunAborted; every other failure is absorbed into the entry state.
func (s *scannerService) scanOne(ctx context.Context, symbol string, lookbackDays int) error {
	s.setStatus(ctx, symbol, dto.ScanStatusLoading, "")

	result, err := s.computeScan(ctx, symbol, lookbackDays)

	s.mu.Lock()
	entry, exists := s.entries[symbol]
	if !exists {
		// Removed or cleared while in flight: discard the outcome.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		s.mu.Unlock()

		s.setStatus(ctx, symbol, dto.ScanStatusError, err.Error())
		if repository.IsServerError(err) {
			return fmt.Errorf("%w: %v", errRunAborted, err)
		}
		s.log.InfoContext(ctx, "Symbol scan failed",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err))
		return nil
	}

	now := time.Now()
	entry.Status = dto.ScanStatusCompleted
	entry.Error = ""
	entry.Result = result
	entry.LastScanAt = &now
	important := entry.Important
	notified := *entry
	s.mu.Unlock()

	if err := s.repo.ScanEntryRepo.SaveResult(ctx, symbol, important, result); err != nil {
		s.log.WarnContext(ctx, "Failed to persist scan result",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err))
	}

	if s.notifier != nil {
		s.notifier.NotifyScanResult(ctx, notified)
	}

	s.log.InfoContext(ctx, "Symbol scan completed",
		logger.StringField("symbol", symbol),
		logger.IntField("signals", len(result.Signals)))
	return nil
}

// computeScan is the cache-aware fetch+compute pipeline.
func (s *scannerService) computeScan(ctx context.Context, symbol string, lookbackDays int) (*dto.ScanResult, error) {
	if cached, found := s.resultCache.Get(symbol, lookbackDays); found {
		s.log.DebugContext(ctx, "Scan cache hit", logger.StringField("symbol", symbol))
		return cached, nil
	}

	history, err := s.repo.PriceHistoryRepo.Get(ctx, dto.GetPriceHistoryParam{
		Symbol:       symbol,
		LookbackDays: lookbackDays,
	})
	if err != nil {
		return nil, err
	}

	bars := history.Prices
	if err := analysis.ValidateSeries(bars); err != nil {
		return nil, err
	}

	slots, err := analysis.BuildSlotHistogram(bars)
	if err != nil {
		return nil, err
	}

	breakouts := analysis.DetectBreakouts(bars, slots, dto.DefaultBreakoutConfig())
	signals := make([]dto.BreakoutSignal, 0, len(breakouts))
	for _, breakout := range breakouts {
		signals = append(signals, dto.BreakoutSignal{
			Breakout:   breakout,
			Resistance: analysis.LocateResistance(breakout, slots[breakout.SlotIndex].Zones),
		})
	}

	optimization, err := analysis.Optimize(bars, slots, s.cfg.Scanner.MinSignals)
	if err != nil {
		return nil, err
	}

	result := &dto.ScanResult{
		Symbol:       symbol,
		LookbackDays: lookbackDays,
		Signals:      signals,
		Optimization: optimization,
		ZoneLegend:   slots,
		ScannedAt:    time.Now(),
	}
	s.resultCache.Set(symbol, lookbackDays, result)
	return result, nil
}

func (s *scannerService) setStatus(ctx context.Context, symbol string, status dto.ScanStatus, errMsg string) {
	s.mu.Lock()
	if entry, exists := s.entries[symbol]; exists {
		entry.Status = status
		entry.Error = errMsg
	}
	s.mu.Unlock()

	if err := s.repo.ScanEntryRepo.UpdateStatus(ctx, symbol, status, errMsg); err != nil {
		s.log.WarnContext(ctx, "Failed to persist status transition",
			logger.StringField("symbol", symbol),
			logger.StringField("status", string(status)),
			logger.ErrorField(err))
	}
}

func entryFromModel(stored *model.ScanEntry) *dto.QueueEntry {
	entry := &dto.QueueEntry{
		Symbol:       stored.Symbol,
		LookbackDays: stored.LookbackDays,
		Status:       dto.ScanStatus(stored.Status),
		Important:    stored.Important,
	}
	if stored.ErrorMessage.Valid {
		entry.Error = stored.ErrorMessage.String
	}
	if stored.LastScanAt.Valid {
		lastScanAt := stored.LastScanAt.Time
		entry.LastScanAt = &lastScanAt
	}
	if len(stored.Result) > 0 {
		var result dto.ScanResult
		if err := json.Unmarshal(stored.Result, &result); err == nil {
			entry.Result = &result
		}
	}
	return entry
}
