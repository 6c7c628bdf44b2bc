package analysis

import "breakout-scanner/internal/dto"

const (
	// minSMAPeriod is the smallest moving-average window in the grid; a
	// series shorter than this cannot be analyzed at all.
	minSMAPeriod = 5
	maxSMAPeriod = 200

	// DefaultMinSignals is the minimum activity a parameter pair must
	// produce to qualify: closed trades count 1, open trades 0.5.
	DefaultMinSignals = 4
)

// breakoutGrid is the fixed detector parameter grid, iterated in
// threshold, lookback, reset, timeout nesting order. The order matters:
// ties on total P/L keep the first-found configuration, so a fixed grid
// keeps optimization deterministic.
var breakoutGrid = buildBreakoutGrid()

func buildBreakoutGrid() []dto.BreakoutConfig {
	thresholds := []float64{0.04, 0.06, 0.08}
	lookbacks := []int{3, 5, 8}
	resets := []float64{0.02, 0.03}
	timeouts := []int{5, 8}

	var grid []dto.BreakoutConfig
	for _, threshold := range thresholds {
		for _, lookback := range lookbacks {
			for _, reset := range resets {
				for _, timeout := range timeouts {
					cfg, err := dto.NewBreakoutConfig(threshold, lookback, reset, timeout)
					if err != nil {
						panic(err)
					}
					grid = append(grid, cfg)
				}
			}
		}
	}
	return grid
}

// smaPeriodGrid is geometrically spaced: +1 below 14, +2 below 20, +3
// below 40, +4 below 50, +5 below 100, +10 up to 200.
var smaPeriodGrid = buildPeriodGrid()

func buildPeriodGrid() []int {
	var periods []int
	for p := minSMAPeriod; p <= maxSMAPeriod; {
		periods = append(periods, p)
		switch {
		case p < 14:
			p++
		case p < 20:
			p += 2
		case p < 40:
			p += 3
		case p < 50:
			p += 4
		case p < 100:
			p += 5
		default:
			p += 10
		}
	}
	return periods
}

// Optimize grid-searches detector parameters against moving-average exit
// periods and returns the pair with the highest total P/L among those
// meeting the minimum signal count. Strictly-greater comparison keeps the
// first-found maximum, so repeated runs on the same input select the same
// pair. ErrNoQualifyingConfig is returned rather than a best-effort
// low-signal result.
func Optimize(bars []dto.PriceBar, slots []dto.SlotZones, minSignals float64) (*dto.OptimizationResult, error) {
	var best *dto.OptimizationResult

	for _, cfg := range breakoutGrid {
		breakouts := DetectBreakouts(bars, slots, cfg)
		if len(breakouts) == 0 {
			continue
		}

		for _, period := range smaPeriodGrid {
			trades := SimulateExits(bars, breakouts, period)

			var closed, open int
			var totalPL float64
			for _, trade := range trades {
				if trade.IsOpen {
					open++
				} else {
					closed++
				}
				totalPL += trade.PLPercent
			}

			totalSignals := float64(closed) + 0.5*float64(open)
			if totalSignals < minSignals {
				continue
			}

			if best == nil || totalPL > best.TotalPL {
				best = &dto.OptimizationResult{
					BreakoutParams: cfg,
					SMAPeriod:      period,
					TotalPL:        totalPL,
					TotalSignals:   totalSignals,
					Trades:         trades,
				}
			}
		}
	}

	if best == nil {
		return nil, ErrNoQualifyingConfig
	}
	return best, nil
}
