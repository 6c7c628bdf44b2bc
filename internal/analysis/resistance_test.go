package analysis

import (
	"testing"

	"breakout-scanner/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestLocateResistance_PartitionsByMidpoint(t *testing.T) {
	zones := []dto.PriceZone{
		{MinPrice: 0, MaxPrice: 10, VolumeWeight: 0.30},
		{MinPrice: 10, MaxPrice: 20, VolumeWeight: 0.35},
		{MinPrice: 20, MaxPrice: 30, VolumeWeight: 0.05},
		{MinPrice: 30, MaxPrice: 40, VolumeWeight: 0.20},
		{MinPrice: 40, MaxPrice: 50, VolumeWeight: 0.10},
	}
	breakout := dto.Breakout{Price: 25, CurrentWeight: 0.05}

	levels := LocateResistance(breakout, zones)

	assert.NotNil(t, levels.Downward)
	assert.InDelta(t, 0.35, levels.Downward.VolumeWeight, 1e-9)
	assert.InDelta(t, 15.0, levels.Downward.Midpoint(), 1e-9)

	assert.NotNil(t, levels.Upward)
	assert.InDelta(t, 0.20, levels.Upward.VolumeWeight, 1e-9)
	assert.InDelta(t, 35.0, levels.Upward.Midpoint(), 1e-9)
}

func TestLocateResistance_MarginIsStrict(t *testing.T) {
	zones := []dto.PriceZone{
		{MinPrice: 0, MaxPrice: 10, VolumeWeight: 0.15},
		{MinPrice: 20, MaxPrice: 30, VolumeWeight: 0.10},
	}
	// 0.15 equals breakout weight plus margin exactly, which does not
	// qualify.
	breakout := dto.Breakout{Price: 25, CurrentWeight: 0.10}

	levels := LocateResistance(breakout, zones)
	assert.Nil(t, levels.Downward)
	assert.Nil(t, levels.Upward)
}

func TestLocateResistance_SideMayBeEmpty(t *testing.T) {
	zones := []dto.PriceZone{
		{MinPrice: 0, MaxPrice: 10, VolumeWeight: 0.80},
		{MinPrice: 10, MaxPrice: 20, VolumeWeight: 0.15},
		{MinPrice: 20, MaxPrice: 30, VolumeWeight: 0.05},
	}
	breakout := dto.Breakout{Price: 25, CurrentWeight: 0.05}

	levels := LocateResistance(breakout, zones)

	assert.NotNil(t, levels.Downward)
	assert.InDelta(t, 0.80, levels.Downward.VolumeWeight, 1e-9)
	assert.Nil(t, levels.Upward)
}

func TestLocateResistance_NoZones(t *testing.T) {
	levels := LocateResistance(dto.Breakout{Price: 10}, nil)
	assert.Nil(t, levels.Upward)
	assert.Nil(t, levels.Downward)
}
