package dto

import "time"

type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusQueued    ScanStatus = "queued"
	ScanStatusLoading   ScanStatus = "loading"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusError     ScanStatus = "error"
)

type RunState string

const (
	RunStateIdle     RunState = "idle"
	RunStateScanning RunState = "scanning"
	RunStatePaused   RunState = "paused"
)

// ScanResult is the full per-symbol payload. ZoneLegend is the heaviest
// sub-field and is the first thing shed when a persistence write fails on
// size.
type ScanResult struct {
	Symbol       string              `json:"symbol"`
	LookbackDays int                 `json:"lookbackDays"`
	Signals      []BreakoutSignal    `json:"signals"`
	Optimization *OptimizationResult `json:"optimization,omitempty"`
	ZoneLegend   []SlotZones         `json:"zoneLegend,omitempty"`
	ScannedAt    time.Time           `json:"scannedAt"`
}

// QueueEntry is the orchestrator's view of one enqueued symbol.
type QueueEntry struct {
	Symbol       string      `json:"symbol"`
	LookbackDays int         `json:"lookbackDays"`
	Status       ScanStatus  `json:"status"`
	Important    bool        `json:"important"`
	Error        string      `json:"error,omitempty"`
	Result       *ScanResult `json:"result,omitempty"`
	LastScanAt   *time.Time  `json:"lastScanAt,omitempty"`
}

// QueueSnapshot is a point-in-time copy of the orchestrator state.
type QueueSnapshot struct {
	State    RunState     `json:"state"`
	InFlight string       `json:"inFlight,omitempty"`
	Entries  []QueueEntry `json:"entries"`
}

type EnqueueRequest struct {
	Symbols      []string `json:"symbols" validate:"required,min=1,dive,required"`
	LookbackDays int      `json:"lookback_days" validate:"omitempty,min=30,max=3650"`
}

type EnqueueRankedRequest struct {
	Limit        int `json:"limit" validate:"required,min=1,max=200"`
	LookbackDays int `json:"lookback_days" validate:"omitempty,min=30,max=3650"`
}

type BacktestRequest struct {
	Symbol       string `json:"symbol" validate:"required"`
	LookbackDays int    `json:"lookback_days" validate:"omitempty,min=30,max=3650"`
}
