package analysis

import (
	"testing"
	"time"

	"breakout-scanner/internal/dto"

	"github.com/stretchr/testify/assert"
)

// vacuumZones builds a three-zone histogram with heavy volume at the
// bottom and a thin top zone, the shape the detector is after.
func vacuumZones() []dto.PriceZone {
	return []dto.PriceZone{
		{MinPrice: 0, MaxPrice: 10, Volume: 500, VolumeWeight: 0.5},
		{MinPrice: 10, MaxPrice: 20, Volume: 400, VolumeWeight: 0.4},
		{MinPrice: 20, MaxPrice: 30, Volume: 100, VolumeWeight: 0.1},
	}
}

// slotSeries pairs one bar per slot with a fixed zone histogram so slot
// prices can be scripted directly.
func slotSeries(closes []float64, zones []dto.PriceZone) ([]dto.PriceBar, []dto.SlotZones) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]dto.PriceBar, len(closes))
	slots := make([]dto.SlotZones, len(closes))
	for i, close := range closes {
		bars[i] = dto.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Close:  close,
			High:   close,
			Low:    close,
			Volume: 100,
		}
		slots[i] = dto.SlotZones{
			SlotIndex: i,
			StartDate: bars[i].Date,
			EndDate:   bars[i].Date,
			AsOfIndex: i,
			Zones:     zones,
		}
	}
	return bars, slots
}

func defaultCfg() dto.BreakoutConfig {
	return dto.DefaultBreakoutConfig()
}

func TestDetectBreakouts_FiresOnRisingPriceIntoVacuum(t *testing.T) {
	bars, slots := slotSeries([]float64{5, 25}, vacuumZones())

	breakouts := DetectBreakouts(bars, slots, defaultCfg())

	assert.Len(t, breakouts, 1)
	b := breakouts[0]
	assert.Equal(t, 1, b.SlotIndex)
	assert.Equal(t, 25.0, b.Price)
	assert.InDelta(t, 0.1, b.CurrentWeight, 1e-9)
	assert.InDelta(t, 0.5, b.ReferenceWeight, 1e-9)
	assert.InDelta(t, 0.4, b.WeightDiff, 1e-9)
}

func TestDetectBreakouts_NoFireOnFirstSlot(t *testing.T) {
	// The very first slot has no previous price to rise from.
	bars, slots := slotSeries([]float64{25}, vacuumZones())
	assert.Empty(t, DetectBreakouts(bars, slots, defaultCfg()))
}

func TestDetectBreakouts_NoFireOnFallingPrice(t *testing.T) {
	bars, slots := slotSeries([]float64{28, 25}, vacuumZones())
	assert.Empty(t, DetectBreakouts(bars, slots, defaultCfg()))
}

func TestDetectBreakouts_NoFireInBottomZone(t *testing.T) {
	// No zones below the bottom zone: nothing to reference against.
	bars, slots := slotSeries([]float64{2, 5}, vacuumZones())
	assert.Empty(t, DetectBreakouts(bars, slots, defaultCfg()))
}

func TestDetectBreakouts_SingleOpenBreakoutUntilTimeout(t *testing.T) {
	// Rising prices within the thin zone keep qualifying, but only one
	// breakout may be open; the next fire waits for the timeout.
	closes := []float64{5, 21, 22, 23, 24, 25, 26, 27, 28, 29}
	bars, slots := slotSeries(closes, vacuumZones())

	cfg := defaultCfg()
	cfg.TimeoutSlots = 5
	breakouts := DetectBreakouts(bars, slots, cfg)

	assert.Len(t, breakouts, 2)
	assert.Equal(t, 1, breakouts[0].SlotIndex)
	assert.Equal(t, 6, breakouts[1].SlotIndex)
}

func TestDetectBreakouts_ThresholdRespected(t *testing.T) {
	bars, slots := slotSeries([]float64{5, 25}, vacuumZones())

	cfg := defaultCfg()
	cfg.BreakoutThreshold = 0.45
	assert.Empty(t, DetectBreakouts(bars, slots, cfg))

	cfg.BreakoutThreshold = 0.39
	assert.Len(t, DetectBreakouts(bars, slots, cfg), 1)
}

func TestDetectBreakouts_LookbackLimitsReference(t *testing.T) {
	// With lookback 1 only the middle zone is in reach from the top
	// zone, so the reference weight drops to 0.4.
	bars, slots := slotSeries([]float64{5, 25}, vacuumZones())

	cfg := defaultCfg()
	cfg.LookbackZones = 1
	breakouts := DetectBreakouts(bars, slots, cfg)

	assert.Len(t, breakouts, 1)
	assert.InDelta(t, 0.4, breakouts[0].ReferenceWeight, 1e-9)
	assert.InDelta(t, 0.3, breakouts[0].WeightDiff, 1e-9)
}

func TestDetectBreakouts_ResetOnVolumeReaccumulation(t *testing.T) {
	heavyTop := []dto.PriceZone{
		{MinPrice: 0, MaxPrice: 10, Volume: 500, VolumeWeight: 0.5},
		{MinPrice: 10, MaxPrice: 20, Volume: 300, VolumeWeight: 0.3},
		{MinPrice: 20, MaxPrice: 30, Volume: 200, VolumeWeight: 0.2},
	}

	bars, slots := slotSeries([]float64{5, 25, 26, 27}, vacuumZones())
	// From slot 2 on, volume has piled back into the breakout zone.
	slots[2].Zones = heavyTop
	slots[3].Zones = heavyTop

	cfg := defaultCfg()
	cfg.TimeoutSlots = 50
	breakouts := DetectBreakouts(bars, slots, cfg)

	// Slot 1 fires at weight 0.1. Slot 2's zone weight 0.2 exceeds
	// 0.1+reset, clearing the state; the same slot then qualifies again
	// with the heavier histogram since 0.5-0.2 is still above threshold.
	assert.Len(t, breakouts, 2)
	assert.Equal(t, 1, breakouts[0].SlotIndex)
	assert.Equal(t, 2, breakouts[1].SlotIndex)
	assert.InDelta(t, 0.2, breakouts[1].CurrentWeight, 1e-9)
}

func TestDetectBreakouts_PriceBelowAllZonesSkipsSlot(t *testing.T) {
	bars, slots := slotSeries([]float64{-5, 25}, vacuumZones())
	// Slot 0's close is below every zone and is skipped, but its price
	// still seeds the rising-price comparison for slot 1.
	breakouts := DetectBreakouts(bars, slots, defaultCfg())
	assert.Len(t, breakouts, 1)
}

func TestDetectBreakouts_RisingConstantVolumeQuietsDown(t *testing.T) {
	// A steady climb on constant volume only looks like a vacuum while
	// the early windows are coarse: the first thin top zone fires, the
	// reset rule re-arms once as weights shift, and a second early fire
	// follows. From then on the cumulative histogram equalizes toward
	// uniform weights, the weight gap falls under every threshold, and
	// the detector stays quiet for the rest of the series.
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 10 + 0.5*float64(i)
	}
	bars := makeBars(closes, 1000)

	slots, err := BuildSlotHistogram(bars)
	assert.NoError(t, err)
	assert.Len(t, slots, 60)

	breakouts := DetectBreakouts(bars, slots, defaultCfg())

	assert.Len(t, breakouts, 2)
	assert.Equal(t, 1, breakouts[0].SlotIndex)
	assert.Equal(t, 4, breakouts[1].SlotIndex)
	for _, b := range breakouts {
		assert.LessOrEqual(t, b.SlotIndex, 4, "late slots must stay quiet")
	}
}

func TestFindZone(t *testing.T) {
	zones := vacuumZones()
	tests := []struct {
		name  string
		price float64
		want  int
	}{
		{name: "below all", price: -1, want: -1},
		{name: "bottom", price: 5, want: 0},
		{name: "boundary belongs to upper", price: 10, want: 1},
		{name: "top boundary clamps", price: 30, want: 2},
		{name: "above all clamps", price: 99, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findZone(zones, tt.price))
		})
	}
}

func TestMaxWeightBelow(t *testing.T) {
	zones := vacuumZones()

	w, ok := maxWeightBelow(zones, 2, 5)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, w, 1e-9)

	w, ok = maxWeightBelow(zones, 2, 1)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, w, 1e-9)

	_, ok = maxWeightBelow(zones, 0, 5)
	assert.False(t, ok)
}
