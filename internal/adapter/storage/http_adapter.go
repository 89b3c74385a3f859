package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/port"
)

// HotelAPIAdapter talks to the hotel inventory service over its JSON API:
// GET /inventory for the full collection, PUT /inventory/{id} for updates.
type HotelAPIAdapter struct {
	baseURL  string
	client   *http.Client
	maxRooms int
}

type hotelDTO struct {
	ID             string  `json:"id"`
	BasePrice      float64 `json:"basePrice,omitempty"`
	PricePerNight  float64 `json:"pricePerNight"`
	AvailableRooms int     `json:"availableRooms"`
	City           string  `json:"city,omitempty"`
	Name           string  `json:"name,omitempty"`
}

type hotelUpdateDTO struct {
	BasePrice      float64 `json:"basePrice"`
	PricePerNight  float64 `json:"pricePerNight"`
	AvailableRooms int     `json:"availableRooms"`
}

func NewHotelAPIAdapter(baseURL string, timeout time.Duration, maxRooms int) *HotelAPIAdapter {
	return &HotelAPIAdapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		maxRooms: maxRooms,
	}
}

func (a *HotelAPIAdapter) Family() domain.Family {
	return domain.FamilyHotel
}

func (a *HotelAPIAdapter) FetchAll(ctx context.Context) ([]domain.Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch inventory: %v", port.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch inventory: status %d", port.ErrConnectivity, resp.StatusCode)
	}

	var dtos []hotelDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: decode inventory: %v", port.ErrConnectivity, err)
	}

	entities := make([]domain.Entity, 0, len(dtos))
	for _, d := range dtos {
		location := d.City
		if location == "" {
			location = d.Name
		}
		entities = append(entities, domain.Entity{
			ID:             d.ID,
			Family:         domain.FamilyHotel,
			BasePrice:      d.BasePrice,
			CurrentPrice:   d.PricePerNight,
			AvailableUnits: d.AvailableRooms,
			MaxUnits:       a.maxRooms,
			Location:       location,
		})
	}

	return entities, nil
}

func (a *HotelAPIAdapter) UpdateOne(ctx context.Context, id string, upd domain.PriceUpdate) error {
	body, err := json.Marshal(hotelUpdateDTO{
		BasePrice:      upd.BasePrice,
		PricePerNight:  upd.CurrentPrice,
		AvailableRooms: upd.AvailableUnits,
	})
	if err != nil {
		return fmt.Errorf("encode hotel update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.baseURL+"/inventory/"+id, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hotel update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: update hotel %s: %v", port.ErrConnectivity, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: hotel %s", port.ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: update hotel %s: status %d", port.ErrConnectivity, id, resp.StatusCode)
	}

	return nil
}
