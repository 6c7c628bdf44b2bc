package analysis

import (
	"testing"
	"time"

	"breakout-scanner/internal/dto"

	"github.com/stretchr/testify/assert"
)

// breakoutSeries builds a series with thirty heavy-volume bars pinned
// near 10 (one early low wick stretches the range) followed by ten thin
// rising bars, which drives the detector into a vacuum fire.
func breakoutSeries() []dto.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	var bars []dto.PriceBar
	for i := 0; i < 30; i++ {
		low := 9.8
		if i == 0 {
			low = 5
		}
		bars = append(bars, dto.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   10,
			High:   10.2,
			Low:    low,
			Close:  10,
			Volume: 1000,
		})
	}
	for i := 0; i < 10; i++ {
		close := 10 + 0.08*float64(i+1)
		bars = append(bars, dto.PriceBar{
			Date:   start.AddDate(0, 0, 30+i),
			Open:   close,
			High:   close + 0.1,
			Low:    close - 0.1,
			Close:  close,
			Volume: 10,
		})
	}
	return bars
}

func TestBuildPeriodGrid(t *testing.T) {
	periods := buildPeriodGrid()

	assert.Equal(t, 5, periods[0])
	assert.Equal(t, 193, periods[len(periods)-1])
	for i := 1; i < len(periods); i++ {
		assert.Greater(t, periods[i], periods[i-1])
	}
	// Spacing widens with the period.
	assert.Contains(t, periods, 13)
	assert.Contains(t, periods, 14)
	assert.Contains(t, periods, 16)
	assert.Contains(t, periods, 20)
	assert.Contains(t, periods, 23)
	assert.NotContains(t, periods, 15)
	assert.NotContains(t, periods, 21)
}

func TestBuildBreakoutGrid(t *testing.T) {
	grid := buildBreakoutGrid()

	// 3 thresholds x 3 lookbacks x 2 resets x 2 timeouts.
	assert.Len(t, grid, 36)
	for _, cfg := range grid {
		assert.NoError(t, cfg.Validate())
	}
	assert.Equal(t, dto.BreakoutConfig{
		BreakoutThreshold: 0.04,
		LookbackZones:     3,
		ResetThreshold:    0.02,
		TimeoutSlots:      5,
	}, grid[0])
}

func TestOptimize_FindsQualifyingConfig(t *testing.T) {
	bars := breakoutSeries()
	slots, err := BuildSlotHistogram(bars)
	assert.NoError(t, err)

	best, err := Optimize(bars, slots, 0.5)
	assert.NoError(t, err)
	assert.NotNil(t, best)
	assert.GreaterOrEqual(t, best.TotalSignals, 0.5)
	assert.NotEmpty(t, best.Trades)
	assert.NoError(t, best.BreakoutParams.Validate())
	assert.GreaterOrEqual(t, best.SMAPeriod, 5)
}

func TestOptimize_Deterministic(t *testing.T) {
	bars := breakoutSeries()
	slots, err := BuildSlotHistogram(bars)
	assert.NoError(t, err)

	first, err := Optimize(bars, slots, 0.5)
	assert.NoError(t, err)
	second, err := Optimize(bars, slots, 0.5)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimize_NoQualifyingConfig(t *testing.T) {
	// A falling series never satisfies the rising-price filter, so no
	// configuration can reach the minimum signal count.
	closes := []float64{20, 19, 18, 17, 16, 15, 14, 13, 12, 11}
	bars := makeBars(closes, 100)
	slots, err := BuildSlotHistogram(bars)
	assert.NoError(t, err)

	best, err := Optimize(bars, slots, 4)
	assert.Nil(t, best)
	assert.ErrorIs(t, err, ErrNoQualifyingConfig)
}

func TestOptimize_MinSignalsFiltersThinActivity(t *testing.T) {
	bars := breakoutSeries()
	slots, err := BuildSlotHistogram(bars)
	assert.NoError(t, err)

	// The series produces a single open trade per configuration, worth
	// half a signal, so a four-signal floor rejects everything.
	best, err := Optimize(bars, slots, 4)
	assert.Nil(t, best)
	assert.ErrorIs(t, err, ErrNoQualifyingConfig)
}
