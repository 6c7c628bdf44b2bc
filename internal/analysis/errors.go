package analysis

import (
	"errors"

	"breakout-scanner/internal/dto"
)

// Data errors are deliberate sentinel values so callers and tests can
// branch on the failure kind instead of on nil results.
var (
	ErrEmptySeries        = errors.New("price series is empty")
	ErrInsufficientData   = errors.New("not enough bars for the smallest moving-average window")
	ErrZeroPriceRange     = errors.New("price series has zero range")
	ErrNoQualifyingConfig = errors.New("no parameter combination met the minimum signal count")
)

// ValidateSeries checks a normalized series before the scan pipeline runs.
// A flat or too-short series marks the symbol as errored without touching
// the rest of the queue.
func ValidateSeries(bars []dto.PriceBar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}
	if len(bars) < minSMAPeriod {
		return ErrInsufficientData
	}
	lo, hi := seriesRange(bars)
	if hi-lo == 0 {
		return ErrZeroPriceRange
	}
	return nil
}
