package analysis

import (
	"math"

	"breakout-scanner/internal/dto"
)

// ComputeSMA returns the period-length simple moving average of closes.
// Entries before index period-1 are NaN.
func ComputeSMA(bars []dto.PriceBar, period int) []float64 {
	sma := make([]float64, len(bars))
	var sum float64
	for i, bar := range bars {
		sum += bar.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			sma[i] = sum / float64(period)
		} else {
			sma[i] = math.NaN()
		}
	}
	return sma
}

// SimulateExits walks the series forward opening a position at each
// breakout's close and closing it the first time the moving average's
// day-over-day slope turns negative. One position at a time; a breakout
// arriving while holding is ignored. A position still held at series end
// is valued at the last close and flagged open. The simulator keeps no
// state between calls.
func SimulateExits(bars []dto.PriceBar, breakouts []dto.Breakout, period int) []dto.Trade {
	if len(bars) == 0 || period < 1 {
		return nil
	}

	sma := ComputeSMA(bars, period)
	var trades []dto.Trade
	holding := false
	var entryBar dto.PriceBar
	var entryPrice float64

	next := 0
	for i, bar := range bars {
		if holding && i > 0 && !math.IsNaN(sma[i]) && !math.IsNaN(sma[i-1]) && sma[i] < sma[i-1] {
			exitDate := bar.Date
			exitPrice := bar.Close
			trades = append(trades, dto.Trade{
				EntryDate:  entryBar.Date,
				EntryPrice: entryPrice,
				ExitDate:   &exitDate,
				ExitPrice:  &exitPrice,
				PLPercent:  (exitPrice - entryPrice) / entryPrice * 100,
			})
			holding = false
		}

		for next < len(breakouts) && !breakouts[next].Date.After(bar.Date) {
			if breakouts[next].Date.Equal(bar.Date) && !holding {
				holding = true
				entryBar = bar
				entryPrice = breakouts[next].Price
			}
			next++
		}
	}

	if holding {
		last := bars[len(bars)-1]
		trades = append(trades, dto.Trade{
			EntryDate:  entryBar.Date,
			EntryPrice: entryPrice,
			PLPercent:  (last.Close - entryPrice) / entryPrice * 100,
			IsOpen:     true,
		})
	}

	return trades
}
