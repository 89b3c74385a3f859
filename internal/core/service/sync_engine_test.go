package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/core/pricing"
	"github.com/travelport/pricesync/internal/port"
)

// fakeInventoryRepo is an in-memory backend: updates are immediately visible
// to the next FetchAll, matching the adapter contract.
type fakeInventoryRepo struct {
	mu         sync.Mutex
	family     domain.Family
	entities   map[string]domain.Entity
	order      []string
	fetchErr   error
	failUpdate map[string]error
	updates    int
}

func newFakeInventoryRepo(family domain.Family, entities ...domain.Entity) *fakeInventoryRepo {
	f := &fakeInventoryRepo{
		family:     family,
		entities:   make(map[string]domain.Entity),
		failUpdate: make(map[string]error),
	}
	for _, e := range entities {
		f.entities[e.ID] = e
		f.order = append(f.order, e.ID)
	}
	return f
}

func (f *fakeInventoryRepo) Family() domain.Family { return f.family }

func (f *fakeInventoryRepo) FetchAll(ctx context.Context) ([]domain.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Entity, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entities[id])
	}
	return out, nil
}

func (f *fakeInventoryRepo) UpdateOne(ctx context.Context, id string, upd domain.PriceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpdate[id]; err != nil {
		return err
	}
	e, ok := f.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", port.ErrNotFound, id)
	}
	e.BasePrice = upd.BasePrice
	e.CurrentPrice = upd.CurrentPrice
	e.AvailableUnits = upd.AvailableUnits
	f.entities[id] = e
	f.updates++
	return nil
}

func (f *fakeInventoryRepo) get(id string) domain.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entities[id]
}

func (f *fakeInventoryRepo) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

type midpointRand struct{}

func (midpointRand) Float64() float64 { return 0.5 }
func (midpointRand) Intn(n int) int   { return 0 }

// Tuesday afternoon in October: autumn -0.08, no weekend or hour factor.
func fixedClock() time.Time {
	return time.Date(2026, time.October, 13, 14, 0, 0, 0, time.UTC)
}

func deterministicOptions() EngineOptions {
	return EngineOptions{
		Interval:  time.Hour,
		Workers:   4,
		OpTimeout: time.Second,
		NewRand:   func() pricing.Rand { return midpointRand{} },
		Now:       fixedClock,
	}
}

func hotelEntity(id string, current float64, units int) domain.Entity {
	return domain.Entity{
		ID:             id,
		Family:         domain.FamilyHotel,
		BasePrice:      500,
		CurrentPrice:   current,
		AvailableUnits: units,
		MaxUnits:       50,
	}
}

func newTestEngine(repo port.InventoryRepository, opts EngineOptions) *SyncEngine {
	anchors := NewAnchorStore(nil, zap.NewNop())
	return NewSyncEngine(repo, anchors, domain.HotelProfile(), opts, zap.NewNop())
}

func TestRunCycle_ConvergesToNoOp(t *testing.T) {
	// 40 of 50 rooms free: occupancy 0.20, low-occupancy -0.10, autumn -0.08,
	// zero jitter -> 500 * 0.82 = 410.
	repo := newFakeInventoryRepo(domain.FamilyHotel,
		hotelEntity("h-1", 500, 40),
		hotelEntity("h-2", 500, 40),
	)
	engine := newTestEngine(repo, deterministicOptions())

	stats := engine.RunCycle(context.Background())
	require.False(t, stats.Skipped)
	require.Equal(t, 2, stats.Fetched)
	require.Equal(t, 2, stats.Updated)
	require.Equal(t, 410.0, repo.get("h-1").CurrentPrice)
	require.Equal(t, 410.0, repo.get("h-2").CurrentPrice)

	// With inputs unchanged and a fixed source, the next cycle recomputes the
	// same values and issues no writes.
	stats = engine.RunCycle(context.Background())
	require.Equal(t, 0, stats.Updated)
	require.Equal(t, 2, stats.Unchanged)
	require.Equal(t, 2, repo.updateCount())
}

func TestRunCycle_FetchFailureSkipsCycle(t *testing.T) {
	repo := newFakeInventoryRepo(domain.FamilyHotel, hotelEntity("h-1", 500, 40))
	repo.fetchErr = fmt.Errorf("%w: connection refused", port.ErrConnectivity)
	engine := newTestEngine(repo, deterministicOptions())

	stats := engine.RunCycle(context.Background())

	require.True(t, stats.Skipped)
	require.Equal(t, 0, repo.updateCount())
}

func TestRunCycle_WriteFailureIsIsolated(t *testing.T) {
	repo := newFakeInventoryRepo(domain.FamilyHotel,
		hotelEntity("h-1", 500, 40),
		hotelEntity("h-2", 500, 40),
		hotelEntity("h-3", 500, 40),
		hotelEntity("h-4", 500, 40),
		hotelEntity("h-5", 500, 40),
	)
	repo.failUpdate["h-3"] = fmt.Errorf("%w: connection reset", port.ErrConnectivity)
	engine := newTestEngine(repo, deterministicOptions())

	stats := engine.RunCycle(context.Background())

	require.Equal(t, 4, stats.Updated)
	require.Equal(t, 1, stats.Failed)
	require.Equal(t, 500.0, repo.get("h-3").CurrentPrice, "failed entity keeps its stored price")
	for _, id := range []string{"h-1", "h-2", "h-4", "h-5"} {
		require.Equal(t, 410.0, repo.get(id).CurrentPrice, "entity %s", id)
	}
}

func TestRunCycle_NotFoundIsNonFatal(t *testing.T) {
	repo := newFakeInventoryRepo(domain.FamilyHotel,
		hotelEntity("h-1", 500, 40),
		hotelEntity("h-2", 500, 40),
	)
	repo.failUpdate["h-1"] = fmt.Errorf("%w: h-1", port.ErrNotFound)
	engine := newTestEngine(repo, deterministicOptions())

	stats := engine.RunCycle(context.Background())

	require.Equal(t, 1, stats.Updated)
	require.Equal(t, 1, stats.Failed)
}

func TestRunCycle_InvariantsHoldUnderRealEntropy(t *testing.T) {
	profile := domain.TripProfile()
	seed := rand.New(rand.NewSource(11))

	var entities []domain.Entity
	for i := 0; i < 40; i++ {
		transport := "flight"
		maxUnits := 200
		if i%4 == 0 {
			transport = "train"
			maxUnits = 600
		}
		entities = append(entities, domain.Entity{
			ID:             fmt.Sprintf("t-%02d", i),
			Family:         domain.FamilyTrip,
			BasePrice:      100 + seed.Float64()*400,
			CurrentPrice:   100 + seed.Float64()*400,
			AvailableUnits: seed.Intn(maxUnits + 1),
			MaxUnits:       maxUnits,
			TransportType:  transport,
			DepartureTime:  fixedClock().Add(time.Duration(seed.Intn(1440)) * time.Hour),
		})
	}
	repo := newFakeInventoryRepo(domain.FamilyTrip, entities...)

	opts := deterministicOptions()
	var mu sync.Mutex
	next := int64(0)
	opts.NewRand = func() pricing.Rand {
		mu.Lock()
		defer mu.Unlock()
		next++
		return rand.New(rand.NewSource(next))
	}
	anchors := NewAnchorStore(nil, zap.NewNop())
	engine := NewSyncEngine(repo, anchors, profile, opts, zap.NewNop())

	for cycle := 0; cycle < 5; cycle++ {
		stats := engine.RunCycle(context.Background())
		require.False(t, stats.Skipped)

		for _, e := range entities {
			stored := repo.get(e.ID)
			lo := math.Round(e.BasePrice * profile.MinBandFactor)
			hi := math.Round(e.BasePrice * profile.MaxBandFactor)
			require.GreaterOrEqual(t, stored.CurrentPrice, lo, "cycle %d entity %s", cycle, e.ID)
			require.LessOrEqual(t, stored.CurrentPrice, hi, "cycle %d entity %s", cycle, e.ID)
			require.GreaterOrEqual(t, stored.AvailableUnits, 0)
			require.LessOrEqual(t, stored.AvailableUnits, e.MaxUnits)
			// Anchors never drift, however many writes happened.
			require.Equal(t, e.BasePrice, stored.BasePrice, "cycle %d entity %s", cycle, e.ID)
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	repo := newFakeInventoryRepo(domain.FamilyHotel, hotelEntity("h-1", 500, 40))
	opts := deterministicOptions()
	opts.Interval = 10 * time.Millisecond
	engine := newTestEngine(repo, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
	require.GreaterOrEqual(t, repo.updateCount(), 1)
}
