package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/port"
)

// seedPrice is one substring rule of the bootstrap table consulted when an
// entity arrives without any stored base price. Ordered so lookups are
// deterministic when several substrings match.
type seedPrice struct {
	match string
	price float64
}

var hotelSeedTable = []seedPrice{
	{"paris", 220},
	{"london", 240},
	{"new york", 280},
	{"tokyo", 200},
	{"dubai", 260},
	{"rome", 180},
	{"barcelona", 170},
	{"marrakech", 110},
	{"casablanca", 120},
	{"istanbul", 140},
}

var tripSeedTable = []seedPrice{
	{"flight", 200},
	{"plane", 200},
	{"train", 80},
	{"bus", 40},
	{"ferry", 60},
}

// AnchorStore holds the per-entity anchor (base) price for the process
// lifetime. Anchors are initialized lazily on first sight of an entity and
// never overwritten afterwards, which is what keeps recomputed prices from
// drifting across cycles. Safe for concurrent per-entity tasks;
// initialization is first-writer-wins.
type AnchorStore struct {
	mu      sync.Mutex
	anchors map[string]float64

	repo   port.AnchorRepository // optional durable record, may be nil
	logger *zap.Logger
}

func NewAnchorStore(repo port.AnchorRepository, logger *zap.Logger) *AnchorStore {
	return &AnchorStore{
		anchors: make(map[string]float64),
		repo:    repo,
		logger:  logger,
	}
}

// GetOrInit returns the entity's anchor price, initializing it on first
// sight. Resolution order: stored basePrice field, durable anchor record,
// seed table, family default. Repeated calls for the same id always return
// the first resolved value.
func (s *AnchorStore) GetOrInit(ctx context.Context, e domain.Entity, p domain.Profile) float64 {
	s.mu.Lock()
	if v, ok := s.anchors[e.ID]; ok {
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	base := e.BasePrice
	if base <= 0 && s.repo != nil {
		v, ok, err := s.repo.LoadAnchor(ctx, e.ID)
		if err != nil {
			s.logger.Warn("anchor record load failed",
				zap.String("entity_id", e.ID), zap.Error(err))
		} else if ok {
			base = v
		}
	}
	if base <= 0 {
		base = seedBasePrice(e, p)
	}

	s.mu.Lock()
	if v, ok := s.anchors[e.ID]; ok {
		// Another task initialized this id while we were resolving.
		base = v
	} else {
		s.anchors[e.ID] = base
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveAnchor(ctx, e.ID, base); err != nil {
			s.logger.Warn("anchor record save failed",
				zap.String("entity_id", e.ID), zap.Error(err))
		}
	}

	return base
}

// Len reports how many entities have been anchored so far.
func (s *AnchorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anchors)
}

// seedBasePrice derives a reasonable anchor for an entity with no stored base
// price. Bootstrap only; a persisted basePrice or durable anchor always wins.
func seedBasePrice(e domain.Entity, p domain.Profile) float64 {
	table := hotelSeedTable
	key := e.Location
	if e.Family == domain.FamilyTrip {
		table = tripSeedTable
		key = e.TransportType
	}

	key = strings.ToLower(key)
	for _, s := range table {
		if strings.Contains(key, s.match) {
			return s.price
		}
	}

	return p.DefaultBase
}
