// inventory-sim is a local stand-in for the hotel inventory service. It
// serves the same JSON contract the sync daemon consumes, backed by an
// in-memory map, so a full hotel sync loop can run without the real backend.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
)

const listenAddr = ":5000"

type hotel struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	City           string  `json:"city"`
	BasePrice      float64 `json:"basePrice,omitempty"`
	PricePerNight  float64 `json:"pricePerNight"`
	AvailableRooms int     `json:"availableRooms"`
}

type inventoryStore struct {
	mu     sync.RWMutex
	hotels map[string]hotel
	order  []string
}

func newInventoryStore(seed []hotel) *inventoryStore {
	s := &inventoryStore{hotels: make(map[string]hotel, len(seed))}
	for _, h := range seed {
		s.hotels[h.ID] = h
		s.order = append(s.order, h.ID)
	}
	return s
}

func (s *inventoryStore) list() []hotel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hotel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.hotels[id])
	}
	return out
}

func (s *inventoryStore) update(id string, basePrice, price float64, rooms int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return false
	}
	h.BasePrice = basePrice
	h.PricePerNight = price
	h.AvailableRooms = rooms
	s.hotels[id] = h
	return true
}

func main() {
	store := newInventoryStore([]hotel{
		{ID: "h-001", Name: "Riad Atlas", City: "Marrakech", PricePerNight: 95, AvailableRooms: 32},
		{ID: "h-002", Name: "Hotel Lumiere", City: "Paris", BasePrice: 220, PricePerNight: 240, AvailableRooms: 12},
		{ID: "h-003", Name: "The Borough", City: "London", BasePrice: 240, PricePerNight: 225, AvailableRooms: 5},
		{ID: "h-004", Name: "Bay Tower", City: "Casablanca", PricePerNight: 130, AvailableRooms: 41},
		{ID: "h-005", Name: "Shinjuku Gate", City: "Tokyo", BasePrice: 200, PricePerNight: 200, AvailableRooms: 27},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.list())
	})
	mux.HandleFunc("PUT /api/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BasePrice      float64 `json:"basePrice"`
			PricePerNight  float64 `json:"pricePerNight"`
			AvailableRooms int     `json:"availableRooms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		id := r.PathValue("id")
		if !store.update(id, body.BasePrice, body.PricePerNight, body.AvailableRooms) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "hotel not found"})
			return
		}
		log.Printf("updated %s: price=%.0f rooms=%d", id, body.PricePerNight, body.AvailableRooms)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	log.Printf("inventory-sim listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
