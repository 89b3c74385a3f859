package pricing

// Cancellation probability per simulation step.
const cancellationChance = 0.18

// SimulateAvailability applies one step of simulated booking activity to an
// entity's remaining capacity: a small uniform draw of bookings, an occasional
// draw of cancellations, clamped to [0, maxUnits]. Pure given the random
// source. High-capacity families (trains) see slightly larger booking draws.
func SimulateAvailability(currentUnits, maxUnits int, highCapacity bool, rng Rand) int {
	if maxUnits <= 0 {
		return 0
	}

	draw := 3 // bookings in {0,1,2}
	if highCapacity {
		draw = 4 // {0,1,2,3}
	}
	bookings := rng.Intn(draw)

	cancellations := 0
	if rng.Float64() < cancellationChance {
		cancellations = 1 + rng.Intn(2) // {1,2}
	}

	units := currentUnits - bookings + cancellations
	if units < 0 {
		return 0
	}
	if units > maxUnits {
		return maxUnits
	}
	return units
}
