package service

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/core/pricing"
	"github.com/travelport/pricesync/internal/port"
)

// Price deltas at or below this many currency units are treated as noise and
// not written back.
const priceChangeThreshold = 1.0

// EngineOptions are the runtime tunables of one family engine. Zero values
// fall back to defaults.
type EngineOptions struct {
	Interval  time.Duration
	Workers   int
	OpTimeout time.Duration

	// NewRand builds a per-worker entropy source; tests inject fixed ones.
	NewRand func() pricing.Rand

	// Now is the engine clock; tests pin it.
	Now func() time.Time
}

func (o *EngineOptions) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 16
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 10 * time.Second
	}
	if o.NewRand == nil {
		var seq atomic.Int64
		o.NewRand = func() pricing.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano() + seq.Add(1)))
		}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// CycleStats summarizes one fetch/compute/write pass.
type CycleStats struct {
	Skipped   bool
	Fetched   int
	Updated   int
	Failed    int
	Unchanged int
	Duration  time.Duration
}

// SyncEngine owns the periodic pricing cycle for one entity family. Cycles
// never overlap: a single loop goroutine drives them, and a tick firing
// mid-cycle is delivered after the cycle finishes (at most one is pending).
type SyncEngine struct {
	repo    port.InventoryRepository
	anchors *AnchorStore
	profile domain.Profile
	opts    EngineOptions
	logger  *zap.Logger
}

func NewSyncEngine(repo port.InventoryRepository, anchors *AnchorStore, profile domain.Profile, opts EngineOptions, logger *zap.Logger) *SyncEngine {
	opts.applyDefaults()
	return &SyncEngine{
		repo:    repo,
		anchors: anchors,
		profile: profile,
		opts:    opts,
		logger:  logger.With(zap.String("family", string(repo.Family()))),
	}
}

// Run drives cycles until the context is cancelled. Cancellation stops
// scheduling; per-entity operations already dispatched within a cycle run to
// completion on their own timeouts.
func (e *SyncEngine) Run(ctx context.Context) {
	e.logger.Info("sync engine started", zap.Duration("interval", e.opts.Interval))

	e.RunCycle(ctx)

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sync engine stopped")
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one fetch/compute/write pass over the family.
func (e *SyncEngine) RunCycle(ctx context.Context) CycleStats {
	cycleID := uuid.NewString()[:8]
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, e.opts.OpTimeout)
	entities, err := e.repo.FetchAll(fetchCtx)
	cancel()
	if err != nil {
		// A failed fetch skips the whole cycle; the next one starts fresh.
		e.logger.Warn("cycle skipped, fetch failed",
			zap.String("cycle", cycleID), zap.Error(err))
		return CycleStats{Skipped: true, Duration: time.Since(start)}
	}

	var updated, failed, unchanged atomic.Int64

	jobs := make(chan domain.Entity)
	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := e.opts.NewRand()
			for ent := range jobs {
				switch e.processEntity(ent, rng, cycleID) {
				case entityUpdated:
					updated.Add(1)
				case entityFailed:
					failed.Add(1)
				default:
					unchanged.Add(1)
				}
			}
		}()
	}
	for _, ent := range entities {
		jobs <- ent
	}
	close(jobs)
	wg.Wait()

	stats := CycleStats{
		Fetched:   len(entities),
		Updated:   int(updated.Load()),
		Failed:    int(failed.Load()),
		Unchanged: int(unchanged.Load()),
		Duration:  time.Since(start),
	}
	e.logger.Info("cycle complete",
		zap.String("cycle", cycleID),
		zap.Int("fetched", stats.Fetched),
		zap.Int("updated", stats.Updated),
		zap.Int("failed", stats.Failed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Duration("duration", stats.Duration),
	)
	return stats
}

type entityOutcome int

const (
	entityUnchanged entityOutcome = iota
	entityUpdated
	entityFailed
)

// processEntity recomputes one entity and writes it back when the change is
// meaningful. It runs on its own timeout context so that dispatched work
// finishes even while the engine is shutting down.
func (e *SyncEngine) processEntity(ent domain.Entity, rng pricing.Rand, cycleID string) entityOutcome {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.OpTimeout)
	defer cancel()

	if ent.MaxUnits <= 0 {
		ent.MaxUnits = e.profile.DefaultUnits
	}

	base := e.anchors.GetOrInit(ctx, ent, e.profile)
	now := e.opts.Now()
	newPrice := pricing.ComputePrice(base, ent, e.profile, now, rng)
	newUnits := pricing.SimulateAvailability(ent.AvailableUnits, ent.MaxUnits, e.profile.HighCapacity(ent), rng)

	priceChanged := math.Abs(newPrice-ent.CurrentPrice) > priceChangeThreshold
	if !priceChanged && newUnits == ent.AvailableUnits {
		return entityUnchanged
	}

	err := e.repo.UpdateOne(ctx, ent.ID, domain.PriceUpdate{
		BasePrice:      base,
		CurrentPrice:   newPrice,
		AvailableUnits: newUnits,
	})
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			e.logger.Warn("update skipped, entity gone",
				zap.String("cycle", cycleID), zap.String("entity_id", ent.ID))
		} else {
			e.logger.Warn("update failed",
				zap.String("cycle", cycleID), zap.String("entity_id", ent.ID), zap.Error(err))
		}
		return entityFailed
	}

	e.logger.Info("entity updated",
		zap.String("cycle", cycleID),
		zap.String("entity_id", ent.ID),
		zap.Float64("old_price", ent.CurrentPrice),
		zap.Float64("new_price", newPrice),
		zap.Float64("price_delta_pct", deltaPct(ent.CurrentPrice, newPrice)),
		zap.Int("old_units", ent.AvailableUnits),
		zap.Int("new_units", newUnits),
	)
	return entityUpdated
}

func deltaPct(old, new float64) float64 {
	if old == 0 {
		return 0
	}
	return math.Round((new-old)/old*10000) / 100
}
