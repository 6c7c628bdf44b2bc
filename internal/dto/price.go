package dto

import (
	"sort"
	"time"
)

// PriceBar is one daily OHLCV bar. The json field names are a wire
// contract shared with chart and export consumers.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// NormalizeAscending returns the bars ordered oldest first. Upstream
// sources return either chronological direction, so ordering is never
// assumed.
func NormalizeAscending(bars []PriceBar) []PriceBar {
	out := make([]PriceBar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

type GetPriceHistoryParam struct {
	Symbol       string `json:"symbol"`
	LookbackDays int    `json:"lookback_days"`
}

type PriceHistory struct {
	Symbol string     `json:"symbol"`
	Prices []PriceBar `json:"prices"`
}
