package dto

import "time"

// PriceZone is a contiguous price sub-range of one slot's cumulative
// window, carrying the traded volume that accrued inside it.
type PriceZone struct {
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	Volume       int64   `json:"volume"`
	VolumeWeight float64 `json:"volumeWeight"`
}

// Midpoint returns the center price of the zone.
func (z PriceZone) Midpoint() float64 {
	return (z.MinPrice + z.MaxPrice) / 2
}

// SlotZones is the volume histogram of one date slot. The window is
// cumulative: it covers every bar from the series start through
// AsOfIndex, so later slots carry progressively finer zone grids.
type SlotZones struct {
	SlotIndex int         `json:"slotIndex"`
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	AsOfIndex int         `json:"asOfIndex"`
	Zones     []PriceZone `json:"zones"`
}
