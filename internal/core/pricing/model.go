package pricing

import (
	"math"
	"time"

	"github.com/travelport/pricesync/internal/core/domain"
)

// Rand is the entropy source consumed by the pricing model and the
// availability simulator. *math/rand.Rand satisfies it; tests inject fixed
// sources to make cycles reproducible.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// ComputePrice recomputes the displayed price of one entity from its anchor.
// It is pure given the random source: the same inputs, clock and entropy
// always yield the same price. Factors stack additively onto a 1.0 multiplier,
// then the result is rounded and clamped into the family band so prices can
// never drift outside [MinBandFactor, MaxBandFactor] of the anchor.
func ComputePrice(basePrice float64, e domain.Entity, p domain.Profile, now time.Time, rng Rand) float64 {
	mult := 1.0

	// Weekday and hour factors read the departure timestamp for trips,
	// the wall clock for hotels.
	ref := now
	if p.TimeFromDeparture && !e.DepartureTime.IsZero() {
		ref = e.DepartureTime
	}

	if w, ok := p.SeasonalWeights[ref.Month()]; ok {
		mult += w
	}
	if p.WeekendDays[ref.Weekday()] {
		mult += p.WeekendWeight
	}
	mult += occupancyWeight(p, e.OccupancyRate())
	mult += hourWeight(p, ref.Hour())
	if p.UseBookingWindow && !e.DepartureTime.IsZero() {
		mult += bookingWindowWeight(p, daysUntil(e.DepartureTime, now))
	}
	mult += (rng.Float64()*2 - 1) * p.Jitter

	price := math.Round(basePrice * mult)
	lo := math.Round(basePrice * p.MinBandFactor)
	hi := math.Round(basePrice * p.MaxBandFactor)
	if price < lo {
		return lo
	}
	if price > hi {
		return hi
	}
	return price
}

func occupancyWeight(p domain.Profile, occ float64) float64 {
	for _, tier := range p.OccupancyTiers {
		if occ >= tier.Threshold {
			return tier.Weight
		}
	}
	if occ < p.LowOccThreshold {
		return p.LowOccWeight
	}
	return 0
}

func hourWeight(p domain.Profile, hour int) float64 {
	if p.PeakHours[hour] {
		return p.PeakWeight
	}
	if p.OffPeakHours[hour] {
		return p.OffPeakWeight
	}
	return 0
}

func bookingWindowWeight(p domain.Profile, days int) float64 {
	switch {
	case days <= p.LastMinuteDays:
		return p.LastMinuteWeight
	case days <= p.NearWindowDays:
		return p.NearWindowWeight
	case days >= p.FarWindowDays:
		return p.FarWindowWeight
	}
	return 0
}

// daysUntil counts calendar-ish days to departure, rounding partial days up.
// Departed or imminent trips count as 0.
func daysUntil(departure, now time.Time) int {
	d := departure.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
