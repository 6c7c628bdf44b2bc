package analysis

import "breakout-scanner/internal/dto"

type detectorState int

const (
	stateNeutral detectorState = iota
	stateInBreakout
)

// DetectBreakouts runs the volume-vacuum state machine over the slot
// histogram. A breakout fires when the zone holding the slot's
// representative price (its last bar's close) carries at least
// BreakoutThreshold less weight than the heaviest of the LookbackZones
// zones below it, and price is strictly rising versus the previous slot.
// At most one breakout is open at a time; it clears on timeout or when
// volume re-accumulates past ResetThreshold.
func DetectBreakouts(bars []dto.PriceBar, slots []dto.SlotZones, cfg dto.BreakoutConfig) []dto.Breakout {
	var breakouts []dto.Breakout

	state := stateNeutral
	var breakoutZoneWeight float64
	var breakoutSlotIndex int
	prevPrice := 0.0

	for i, slot := range slots {
		price := bars[slot.AsOfIndex].Close
		zoneIdx := findZone(slot.Zones, price)
		if zoneIdx < 0 {
			prevPrice = price
			continue
		}
		currentWeight := slot.Zones[zoneIdx].VolumeWeight

		if state == stateInBreakout && i-breakoutSlotIndex >= cfg.TimeoutSlots {
			state = stateNeutral
		}
		if state == stateInBreakout && currentWeight >= breakoutZoneWeight+cfg.ResetThreshold {
			// Volume has re-accumulated at this level, the vacuum is gone.
			state = stateNeutral
		}

		if state == stateNeutral && zoneIdx > 0 && i > 0 && price > prevPrice {
			referenceWeight, ok := maxWeightBelow(slot.Zones, zoneIdx, cfg.LookbackZones)
			if ok && referenceWeight-currentWeight >= cfg.BreakoutThreshold {
				breakouts = append(breakouts, dto.Breakout{
					SlotIndex:       i,
					Date:            bars[slot.AsOfIndex].Date,
					Price:           price,
					CurrentWeight:   currentWeight,
					ReferenceWeight: referenceWeight,
					WeightDiff:      referenceWeight - currentWeight,
				})
				state = stateInBreakout
				breakoutZoneWeight = currentWeight
				breakoutSlotIndex = i
			}
		}

		prevPrice = price
	}

	return breakouts
}

// findZone returns the index of the zone whose [MinPrice, MaxPrice)
// contains price. A price at or above the top boundary clamps into the
// last zone; a price below the bottom boundary is not found.
func findZone(zones []dto.PriceZone, price float64) int {
	if len(zones) == 0 || price < zones[0].MinPrice {
		return -1
	}
	for i, z := range zones {
		if price >= z.MinPrice && price < z.MaxPrice {
			return i
		}
	}
	return len(zones) - 1
}

// maxWeightBelow scans up to lookback zones strictly below zoneIdx and
// returns the maximum weight found.
func maxWeightBelow(zones []dto.PriceZone, zoneIdx, lookback int) (float64, bool) {
	lo := zoneIdx - lookback
	if lo < 0 {
		lo = 0
	}
	if lo >= zoneIdx {
		return 0, false
	}
	maxWeight := zones[lo].VolumeWeight
	for i := lo + 1; i < zoneIdx; i++ {
		if zones[i].VolumeWeight > maxWeight {
			maxWeight = zones[i].VolumeWeight
		}
	}
	return maxWeight, true
}
