package analysis

import "breakout-scanner/internal/dto"

// resistanceMargin is how much a zone's weight must exceed the breakout
// zone's weight to count as support or resistance.
const resistanceMargin = 0.05

// LocateResistance partitions the breakout slot's zones by midpoint price
// relative to the breakout price and reports, per side, the single
// highest-weight zone whose weight exceeds the breakout weight by the
// margin. A side with no qualifying zone stays nil; that is a normal
// outcome, not an error.
func LocateResistance(breakout dto.Breakout, zones []dto.PriceZone) dto.ResistanceLevels {
	var levels dto.ResistanceLevels

	for _, z := range zones {
		if z.VolumeWeight <= breakout.CurrentWeight+resistanceMargin {
			continue
		}
		zone := z
		if zone.Midpoint() > breakout.Price {
			if levels.Upward == nil || zone.VolumeWeight > levels.Upward.VolumeWeight {
				levels.Upward = &zone
			}
		} else {
			if levels.Downward == nil || zone.VolumeWeight > levels.Downward.VolumeWeight {
				levels.Downward = &zone
			}
		}
	}

	return levels
}
