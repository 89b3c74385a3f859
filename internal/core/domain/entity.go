package domain

import "time"

type Family string

const (
	FamilyHotel Family = "hotel"
	FamilyTrip  Family = "trip"
)

// Entity is one priced inventory block: a hotel room block or a trip seat block.
// The engine never creates or deletes entities; it only recomputes CurrentPrice
// and AvailableUnits.
type Entity struct {
	ID             string
	Family         Family
	BasePrice      float64 // anchor price when the backend stores one, 0 otherwise
	CurrentPrice   float64
	AvailableUnits int
	MaxUnits       int

	// Seeding hints for entities without a stored base price.
	Location      string
	TransportType string

	// Trips only; zero for hotels.
	DepartureTime time.Time
}

// PriceUpdate is the write-back payload for a single entity. BasePrice rides
// along so backends that store an anchor keep it stable across restarts.
type PriceUpdate struct {
	BasePrice      float64
	CurrentPrice   float64
	AvailableUnits int
}

// OccupancyRate returns the sold fraction of capacity, clamped to [0, 1].
func (e Entity) OccupancyRate() float64 {
	if e.MaxUnits <= 0 {
		return 0
	}
	occ := 1 - float64(e.AvailableUnits)/float64(e.MaxUnits)
	if occ < 0 {
		return 0
	}
	if occ > 1 {
		return 1
	}
	return occ
}
