package analysis

import (
	"math"
	"testing"
	"time"

	"breakout-scanner/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestComputeSMA(t *testing.T) {
	bars := makeBars([]float64{10, 20, 30, 40, 50}, 100)

	sma := ComputeSMA(bars, 3)

	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))
	assert.InDelta(t, 20.0, sma[2], 1e-9)
	assert.InDelta(t, 30.0, sma[3], 1e-9)
	assert.InDelta(t, 40.0, sma[4], 1e-9)
}

func TestComputeSMA_PeriodOne(t *testing.T) {
	bars := makeBars([]float64{10, 20, 30}, 100)
	sma := ComputeSMA(bars, 1)
	assert.Equal(t, []float64{10, 20, 30}, sma)
}

func breakoutAt(bars []dto.PriceBar, idx int) dto.Breakout {
	return dto.Breakout{
		SlotIndex: idx,
		Date:      bars[idx].Date,
		Price:     bars[idx].Close,
	}
}

func TestSimulateExits_ClosesOnNegativeSlope(t *testing.T) {
	// Rising through bar 5, then a downturn flips the 2-day SMA slope
	// at bar 7.
	bars := makeBars([]float64{10, 11, 12, 13, 14, 15, 14, 12, 11, 10}, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 3)}

	trades := SimulateExits(bars, breakouts, 2)

	assert.Len(t, trades, 1)
	trade := trades[0]
	assert.Equal(t, bars[3].Date, trade.EntryDate)
	assert.Equal(t, 13.0, trade.EntryPrice)
	assert.False(t, trade.IsOpen)
	assert.NotNil(t, trade.ExitDate)
	assert.NotNil(t, trade.ExitPrice)
	assert.Equal(t, bars[7].Date, *trade.ExitDate)
	assert.Equal(t, 12.0, *trade.ExitPrice)
	assert.InDelta(t, (12.0-13.0)/13.0*100, trade.PLPercent, 1e-9)
}

func TestSimulateExits_NoExitOnEntryDay(t *testing.T) {
	// The slope is already negative when the breakout lands; the exit
	// check runs before the entry is opened, so the position survives to
	// the next bar.
	bars := makeBars([]float64{15, 14, 13, 12, 11}, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 2)}

	trades := SimulateExits(bars, breakouts, 2)

	assert.Len(t, trades, 1)
	assert.Equal(t, bars[2].Date, trades[0].EntryDate)
	assert.Equal(t, bars[3].Date, *trades[0].ExitDate)
}

func TestSimulateExits_OpenTradeAtSeriesEnd(t *testing.T) {
	bars := makeBars([]float64{10, 11, 12, 13, 14, 15}, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 2)}

	trades := SimulateExits(bars, breakouts, 3)

	assert.Len(t, trades, 1)
	trade := trades[0]
	assert.True(t, trade.IsOpen)
	assert.Nil(t, trade.ExitDate)
	assert.Nil(t, trade.ExitPrice)
	assert.InDelta(t, (15.0-12.0)/12.0*100, trade.PLPercent, 1e-9)
}

func TestSimulateExits_SecondBreakoutIgnoredWhileHolding(t *testing.T) {
	bars := makeBars([]float64{10, 11, 12, 13, 14, 15}, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 1), breakoutAt(bars, 3)}

	trades := SimulateExits(bars, breakouts, 3)

	assert.Len(t, trades, 1)
	assert.Equal(t, bars[1].Date, trades[0].EntryDate)
}

func TestSimulateExits_ReentersAfterExit(t *testing.T) {
	// Up, down past the first exit, then up again into a second entry
	// that is still open at series end.
	closes := []float64{10, 12, 14, 12, 10, 11, 13, 15, 17, 19}
	bars := makeBars(closes, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 1), breakoutAt(bars, 6)}

	trades := SimulateExits(bars, breakouts, 2)

	assert.Len(t, trades, 2)
	assert.False(t, trades[0].IsOpen)
	assert.True(t, trades[1].IsOpen)
	assert.Equal(t, bars[6].Date, trades[1].EntryDate)
}

func TestSimulateExits_Idempotent(t *testing.T) {
	closes := []float64{10, 12, 14, 12, 10, 11, 13, 15, 17, 19}
	bars := makeBars(closes, 100)
	breakouts := []dto.Breakout{breakoutAt(bars, 1), breakoutAt(bars, 6)}

	first := SimulateExits(bars, breakouts, 2)
	second := SimulateExits(bars, breakouts, 2)
	assert.Equal(t, first, second)
}

func TestSimulateExits_Degenerate(t *testing.T) {
	bars := makeBars([]float64{10, 11}, 100)
	assert.Nil(t, SimulateExits(nil, nil, 3))
	assert.Nil(t, SimulateExits(bars, nil, 0))
	assert.Empty(t, SimulateExits(bars, nil, 3))
}

func TestSimulateExits_BreakoutBeforeSeriesIgnored(t *testing.T) {
	bars := makeBars([]float64{10, 11, 12, 13}, 100)
	early := dto.Breakout{
		Date:  bars[0].Date.Add(-48 * time.Hour),
		Price: 9,
	}
	assert.Empty(t, SimulateExits(bars, []dto.Breakout{early}, 2))
}
