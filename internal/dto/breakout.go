package dto

import (
	"fmt"
	"time"
)

// Breakout flags a slot whose price sits in a zone with sharply less
// accumulated volume than a recent zone below it, while price is rising.
type Breakout struct {
	SlotIndex       int       `json:"slotIndex"`
	Date            time.Time `json:"date"`
	Price           float64   `json:"price"`
	CurrentWeight   float64   `json:"currentWeight"`
	ReferenceWeight float64   `json:"referenceWeight"`
	WeightDiff      float64   `json:"weightDiff"`
}

// BreakoutConfig holds the detector tunables. Construct through
// NewBreakoutConfig so invalid grids are rejected up front.
type BreakoutConfig struct {
	BreakoutThreshold float64 `json:"breakoutThreshold"`
	LookbackZones     int     `json:"lookbackZones"`
	ResetThreshold    float64 `json:"resetThreshold"`
	TimeoutSlots      int     `json:"timeoutSlots"`
}

func NewBreakoutConfig(breakoutThreshold float64, lookbackZones int, resetThreshold float64, timeoutSlots int) (BreakoutConfig, error) {
	cfg := BreakoutConfig{
		BreakoutThreshold: breakoutThreshold,
		LookbackZones:     lookbackZones,
		ResetThreshold:    resetThreshold,
		TimeoutSlots:      timeoutSlots,
	}
	return cfg, cfg.Validate()
}

func (c BreakoutConfig) Validate() error {
	if c.BreakoutThreshold <= 0 || c.BreakoutThreshold >= 1 {
		return fmt.Errorf("breakout threshold %v out of range (0,1)", c.BreakoutThreshold)
	}
	if c.LookbackZones < 1 {
		return fmt.Errorf("lookback zones %d must be at least 1", c.LookbackZones)
	}
	if c.ResetThreshold <= 0 || c.ResetThreshold >= 1 {
		return fmt.Errorf("reset threshold %v out of range (0,1)", c.ResetThreshold)
	}
	if c.TimeoutSlots < 1 {
		return fmt.Errorf("timeout slots %d must be at least 1", c.TimeoutSlots)
	}
	return nil
}

// DefaultBreakoutConfig returns the detector defaults used outside the
// optimizer grid.
func DefaultBreakoutConfig() BreakoutConfig {
	return BreakoutConfig{
		BreakoutThreshold: 0.06,
		LookbackZones:     5,
		ResetThreshold:    0.03,
		TimeoutSlots:      5,
	}
}

// Trade is one simulated position. ExitDate and ExitPrice stay nil when
// the series ends while the position is still held; such trades are
// valued at the last close and IsOpen is set.
type Trade struct {
	EntryDate  time.Time  `json:"entryDate"`
	EntryPrice float64    `json:"entryPrice"`
	ExitDate   *time.Time `json:"exitDate,omitempty"`
	ExitPrice  *float64   `json:"exitPrice,omitempty"`
	PLPercent  float64    `json:"plPercent"`
	IsOpen     bool       `json:"isOpen"`
}

// OptimizationResult is the argmax over the parameter grid.
type OptimizationResult struct {
	BreakoutParams BreakoutConfig `json:"breakoutParams"`
	SMAPeriod      int            `json:"smaPeriod"`
	TotalPL        float64        `json:"totalPL"`
	TotalSignals   float64        `json:"totalSignals"`
	Trades         []Trade        `json:"trades"`
}

// ResistanceLevels reports the nearest high-volume zones around a
// breakout. Either side may be absent.
type ResistanceLevels struct {
	Upward   *PriceZone `json:"upward,omitempty"`
	Downward *PriceZone `json:"downward,omitempty"`
}

// BreakoutSignal pairs a detected breakout with its resistance context.
type BreakoutSignal struct {
	Breakout   Breakout         `json:"breakout"`
	Resistance ResistanceLevels `json:"resistance"`
}
