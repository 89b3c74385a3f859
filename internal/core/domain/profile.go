package domain

import (
	"strings"
	"time"
)

// OccupancyTier adds Weight to the price multiplier once occupancy reaches
// Threshold. Tiers are evaluated top-down; the first match wins.
type OccupancyTier struct {
	Threshold float64
	Weight    float64
}

// Profile is the per-family calibration table for the pricing engine. Hotel
// and trip behavior are two values of this table, not two code paths.
type Profile struct {
	Family Family

	// Allowed price band as factors of the anchor price.
	MinBandFactor float64
	MaxBandFactor float64

	// Month-based season weights; empty for families priced by booking window.
	SeasonalWeights map[time.Month]float64

	WeekendDays   map[time.Weekday]bool
	WeekendWeight float64

	OccupancyTiers  []OccupancyTier
	LowOccThreshold float64
	LowOccWeight    float64

	PeakHours     map[int]bool
	PeakWeight    float64
	OffPeakHours  map[int]bool
	OffPeakWeight float64

	// When set, weekday and hour factors read the departure timestamp
	// instead of the wall clock.
	TimeFromDeparture bool

	UseBookingWindow bool
	LastMinuteDays   int
	LastMinuteWeight float64
	NearWindowDays   int
	NearWindowWeight float64
	FarWindowDays    int
	FarWindowWeight  float64

	// Uniform random fluctuation amplitude.
	Jitter float64

	// Capacity constants.
	DefaultUnits      int
	HighCapacityUnits int
	HighCapacityModes map[string]bool

	// Anchor fallback when neither the backend nor the seed table knows a price.
	DefaultBase float64
}

// HighCapacity reports whether the entity belongs to a high-capacity transport
// mode (larger booking draws in the availability simulator).
func (p Profile) HighCapacity(e Entity) bool {
	if len(p.HighCapacityModes) == 0 {
		return false
	}
	return p.HighCapacityModes[strings.ToLower(e.TransportType)]
}

// HotelProfile is the calibrated coefficient table for hotel room blocks.
// Band [0.70, 1.50] of the anchor.
func HotelProfile() Profile {
	return Profile{
		Family:        FamilyHotel,
		MinBandFactor: 0.70,
		MaxBandFactor: 1.50,
		SeasonalWeights: map[time.Month]float64{
			time.January:   0.20,
			time.March:     0.08,
			time.April:     0.08,
			time.May:       0.08,
			time.June:      0.15,
			time.July:      0.15,
			time.August:    0.15,
			time.September: -0.08,
			time.October:   -0.08,
			time.November:  -0.08,
			time.December:  0.20,
		},
		WeekendDays:   map[time.Weekday]bool{time.Friday: true, time.Saturday: true},
		WeekendWeight: 0.12,
		OccupancyTiers: []OccupancyTier{
			{Threshold: 0.90, Weight: 0.25},
			{Threshold: 0.75, Weight: 0.15},
			{Threshold: 0.50, Weight: 0.08},
		},
		LowOccThreshold: 0.25,
		LowOccWeight:    -0.10,
		PeakHours:       map[int]bool{18: true, 19: true, 20: true, 21: true, 22: true},
		PeakWeight:      0.05,
		OffPeakHours:    map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true},
		OffPeakWeight:   -0.06,
		Jitter:          0.03,
		DefaultUnits:    50,
		DefaultBase:     500,
	}
}

// TripProfile is the calibrated coefficient table for trip seat blocks.
// Band [0.60, 1.80] of the anchor; weekday and hour factors follow the
// departure timestamp.
func TripProfile() Profile {
	return Profile{
		Family:        FamilyTrip,
		MinBandFactor: 0.60,
		MaxBandFactor: 1.80,
		WeekendDays: map[time.Weekday]bool{
			time.Friday:   true,
			time.Saturday: true,
			time.Sunday:   true,
		},
		WeekendWeight: 0.10,
		OccupancyTiers: []OccupancyTier{
			{Threshold: 0.90, Weight: 0.30},
			{Threshold: 0.75, Weight: 0.20},
			{Threshold: 0.50, Weight: 0.10},
		},
		LowOccThreshold:   0.30,
		LowOccWeight:      -0.12,
		PeakHours:         map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true},
		PeakWeight:        0.08,
		OffPeakHours:      map[int]bool{22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true},
		OffPeakWeight:     -0.10,
		TimeFromDeparture: true,
		UseBookingWindow:  true,
		LastMinuteDays:    3,
		LastMinuteWeight:  0.22,
		NearWindowDays:    7,
		NearWindowWeight:  0.10,
		FarWindowDays:     30,
		FarWindowWeight:   -0.06,
		Jitter:            0.04,
		DefaultUnits:      200,
		HighCapacityUnits: 600,
		HighCapacityModes: map[string]bool{"train": true},
		DefaultBase:       200,
	}
}
