package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/port"
)

// TripStoreAdapter reads and writes trip seat blocks against the relational
// trips table (columns id, price, available_seats, transport_type,
// departure_time, origin, destination).
type TripStoreAdapter struct {
	db           *sql.DB
	defaultSeats int
	trainSeats   int
}

func NewTripStoreAdapter(db *sql.DB, defaultSeats, trainSeats int) *TripStoreAdapter {
	return &TripStoreAdapter{db: db, defaultSeats: defaultSeats, trainSeats: trainSeats}
}

func (a *TripStoreAdapter) Family() domain.Family {
	return domain.FamilyTrip
}

func (a *TripStoreAdapter) FetchAll(ctx context.Context) ([]domain.Entity, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, price, available_seats, transport_type, departure_time, origin, destination
		FROM trips`)
	if err != nil {
		return nil, fmt.Errorf("%w: query trips: %v", port.ErrConnectivity, err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		var (
			e         domain.Entity
			transport sql.NullString
			departure sql.NullTime
			origin    sql.NullString
			dest      sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.CurrentPrice, &e.AvailableUnits,
			&transport, &departure, &origin, &dest); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		e.Family = domain.FamilyTrip
		e.TransportType = transport.String
		e.DepartureTime = departure.Time
		e.Location = dest.String
		e.MaxUnits = a.maxSeats(transport.String)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate trips: %v", port.ErrConnectivity, err)
	}

	return entities, nil
}

func (a *TripStoreAdapter) UpdateOne(ctx context.Context, id string, upd domain.PriceUpdate) error {
	result, err := a.db.ExecContext(ctx, `
		UPDATE trips
		SET price = ?, available_seats = ?, updated_at = NOW()
		WHERE id = ?`,
		upd.CurrentPrice, upd.AvailableUnits, id,
	)
	if err != nil {
		return fmt.Errorf("%w: update trip %s: %v", port.ErrConnectivity, id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports 0 affected rows both for a missing id and for a
		// same-value write; tell them apart before reporting not-found.
		var one int
		err := a.db.QueryRowContext(ctx, `SELECT 1 FROM trips WHERE id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: trip %s", port.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("%w: verify trip %s: %v", port.ErrConnectivity, id, err)
		}
	}

	return nil
}

func (a *TripStoreAdapter) maxSeats(transport string) int {
	if transport == "train" {
		return a.trainSeats
	}
	return a.defaultSeats
}
