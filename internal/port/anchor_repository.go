package port

import "context"

// AnchorRepository is optional durable storage for anchor base prices, so a
// restarted process re-anchors at the original base instead of a drifted
// current price. Save follows first-writer-wins: an existing record is never
// overwritten.
type AnchorRepository interface {
	LoadAnchor(ctx context.Context, entityID string) (basePrice float64, ok bool, err error)
	SaveAnchor(ctx context.Context, entityID string, basePrice float64) error
}
