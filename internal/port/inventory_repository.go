package port

import (
	"context"
	"errors"

	"github.com/travelport/pricesync/internal/core/domain"
)

var (
	// ErrConnectivity marks transport failures against a backend. Fetch-time
	// occurrences skip the whole cycle; write-time occurrences are isolated
	// to the one entity.
	ErrConnectivity = errors.New("backend unreachable")

	// ErrNotFound marks an entity that disappeared between fetch and write.
	ErrNotFound = errors.New("entity not found")
)

// InventoryRepository is the per-family backend contract. The hotel and trip
// implementations differ only in transport; semantics are identical — an
// update is immediately visible to the next FetchAll.
type InventoryRepository interface {
	Family() domain.Family

	// FetchAll returns the full entity collection of the family.
	FetchAll(ctx context.Context) ([]domain.Entity, error)

	// UpdateOne persists new price/availability for a single entity.
	UpdateOne(ctx context.Context, id string, upd domain.PriceUpdate) error
}
