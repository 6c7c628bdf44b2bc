package analysis

import (
	"math"

	"breakout-scanner/internal/dto"
)

const (
	maxDateSlots      = 200
	minZonesPerWindow = 3
	zoneGranularity   = 0.03
)

// BuildSlotHistogram slices the series into date slots and builds the
// volume-weighted price-zone histogram of each slot's cumulative window.
// Windows accumulate from the series start, so early slots are coarse and
// later slots carry progressively finer zone grids as price discovery
// widens. Input must be ascending by date.
func BuildSlotHistogram(bars []dto.PriceBar) ([]dto.SlotZones, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}

	globalMin, globalMax := seriesRange(bars)
	globalRange := globalMax - globalMin

	slotEnds := slotEndIndexes(len(bars))
	slots := make([]dto.SlotZones, 0, len(slotEnds))
	startIdx := 0
	for i, endIdx := range slotEnds {
		window := bars[:endIdx+1]
		slot := dto.SlotZones{
			SlotIndex: i,
			StartDate: bars[startIdx].Date,
			EndDate:   bars[endIdx].Date,
			AsOfIndex: endIdx,
			Zones:     windowZones(window, globalRange),
		}
		slots = append(slots, slot)
		startIdx = endIdx + 1
	}
	return slots, nil
}

// slotEndIndexes distributes n bars over min(200, max(1, n/2)) slots and
// returns the inclusive end index of each slot.
func slotEndIndexes(n int) []int {
	slotCount := n / 2
	if slotCount < 1 {
		slotCount = 1
	}
	if slotCount > maxDateSlots {
		slotCount = maxDateSlots
	}

	ends := make([]int, 0, slotCount)
	base := n / slotCount
	rem := n % slotCount
	idx := 0
	for i := 0; i < slotCount; i++ {
		size := base
		if i < rem {
			size++
		}
		idx += size
		ends = append(ends, idx-1)
	}
	return ends
}

// windowZones partitions [windowMin, windowMax] into equal-width zones and
// accumulates each bar's volume into the zone containing its close. Zone
// count scales with how much of the global range the window spans.
func windowZones(window []dto.PriceBar, globalRange float64) []dto.PriceZone {
	windowMin, windowMax := seriesRange(window)
	windowRange := windowMax - windowMin

	if globalRange == 0 || windowRange == 0 {
		return syntheticZone(window, windowMin, windowMax)
	}

	zoneCount := int(math.Round((windowRange / globalRange) / zoneGranularity))
	if zoneCount < minZonesPerWindow {
		zoneCount = minZonesPerWindow
	}

	width := windowRange / float64(zoneCount)
	zones := make([]dto.PriceZone, zoneCount)
	for i := range zones {
		zones[i].MinPrice = windowMin + float64(i)*width
		zones[i].MaxPrice = windowMin + float64(i+1)*width
	}
	// Zone boundaries must partition the window with no gaps.
	zones[zoneCount-1].MaxPrice = windowMax

	var totalVolume int64
	for _, bar := range window {
		idx := int((bar.Close - windowMin) / width)
		if idx >= zoneCount {
			// A close at or above the top boundary clamps into the
			// last zone.
			idx = zoneCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		zones[idx].Volume += bar.Volume
		totalVolume += bar.Volume
	}

	applyWeights(zones, totalVolume)
	return zones
}

// syntheticZone covers a flat window with a single epsilon-wide zone so
// downstream consumers always see a well-formed histogram. With only one
// zone the detector can never fire.
func syntheticZone(window []dto.PriceBar, windowMin, windowMax float64) []dto.PriceZone {
	epsilon := math.Abs(windowMax) * 0.001
	if epsilon == 0 {
		epsilon = 0.01
	}

	var totalVolume int64
	for _, bar := range window {
		totalVolume += bar.Volume
	}
	zones := []dto.PriceZone{{
		MinPrice: windowMin,
		MaxPrice: windowMin + epsilon,
		Volume:   totalVolume,
	}}
	applyWeights(zones, totalVolume)
	return zones
}

func applyWeights(zones []dto.PriceZone, totalVolume int64) {
	if totalVolume == 0 {
		return
	}
	for i := range zones {
		zones[i].VolumeWeight = float64(zones[i].Volume) / float64(totalVolume)
	}
}

func seriesRange(bars []dto.PriceBar) (float64, float64) {
	lo := bars[0].Low
	hi := bars[0].High
	for _, bar := range bars[1:] {
		if bar.Low < lo {
			lo = bar.Low
		}
		if bar.High > hi {
			hi = bar.High
		}
	}
	return lo, hi
}
