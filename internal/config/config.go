package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the startup tunables of the sync daemon. Everything is
// read once from the environment and validated before the first cycle runs.
type Config struct {
	SyncInterval time.Duration
	Workers      int
	OpTimeout    time.Duration

	HotelAPIBaseURL string
	HotelMaxRooms   int
	HotelMinBand    float64
	HotelMaxBand    float64

	TripMySQLDSN   string
	TripSeatsTrip  int
	TripSeatsTrain int
	TripMinBand    float64
	TripMaxBand    float64

	// Optional durable anchor record store; empty disables persistence.
	AnchorRedisAddr string

	HealthAddr string
	LogLevel   string
}

func Load() (*Config, error) {
	interval, err := parseSeconds("SYNC_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	opTimeout, err := parseSeconds("SYNC_OP_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("SYNC_WORKERS", 16)
	if err != nil {
		return nil, err
	}

	hotelMaxRooms, err := parseInt("HOTEL_MAX_ROOMS", 50)
	if err != nil {
		return nil, err
	}
	tripSeats, err := parseInt("TRIP_SEATS_DEFAULT", 200)
	if err != nil {
		return nil, err
	}
	trainSeats, err := parseInt("TRIP_SEATS_TRAIN", 600)
	if err != nil {
		return nil, err
	}

	hotelMin, hotelMax, err := parseBand("HOTEL_PRICE_BAND", 0.70, 1.50)
	if err != nil {
		return nil, err
	}
	tripMin, tripMax, err := parseBand("TRIP_PRICE_BAND", 0.60, 1.80)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SyncInterval:    interval,
		Workers:         workers,
		OpTimeout:       opTimeout,
		HotelAPIBaseURL: getEnv("HOTEL_API_BASE_URL", "http://localhost:5000/api"),
		HotelMaxRooms:   hotelMaxRooms,
		HotelMinBand:    hotelMin,
		HotelMaxBand:    hotelMax,
		TripMySQLDSN:    getEnv("TRIP_MYSQL_DSN", "root:root@tcp(localhost:3306)/travel?parseTime=true"),
		TripSeatsTrip:   tripSeats,
		TripSeatsTrain:  trainSeats,
		TripMinBand:     tripMin,
		TripMaxBand:     tripMax,
		AnchorRedisAddr: os.Getenv("ANCHOR_REDIS_ADDR"),
		HealthAddr:      getEnv("HEALTH_GRPC_ADDR", ":50051"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate refuses configurations the engine cannot run safely with.
func (c *Config) Validate() error {
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", c.SyncInterval)
	}
	if c.OpTimeout <= 0 {
		return fmt.Errorf("op timeout must be positive, got %s", c.OpTimeout)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers)
	}
	if c.HotelMaxRooms <= 0 || c.TripSeatsTrip <= 0 || c.TripSeatsTrain <= 0 {
		return fmt.Errorf("capacity constants must be positive")
	}
	if err := validateBand("hotel", c.HotelMinBand, c.HotelMaxBand); err != nil {
		return err
	}
	if err := validateBand("trip", c.TripMinBand, c.TripMaxBand); err != nil {
		return err
	}
	u, err := url.Parse(c.HotelAPIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid hotel API base URL %q", c.HotelAPIBaseURL)
	}
	if strings.TrimSpace(c.TripMySQLDSN) == "" {
		return fmt.Errorf("trip MySQL DSN must not be empty")
	}
	return nil
}

func validateBand(family string, min, max float64) error {
	if min <= 0 || min > 1 || max < 1 {
		return fmt.Errorf("%s price band [%.2f, %.2f] must satisfy 0 < min <= 1 <= max", family, min, max)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseSeconds(key string, fallback int) (time.Duration, error) {
	n, err := parseInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

// parseBand reads "min,max" factor pairs, e.g. "0.70,1.50".
func parseBand(key string, fallbackMin, fallbackMax float64) (float64, float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallbackMin, fallbackMax, nil
	}
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid %s: want \"min,max\", got %q", key, v)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return min, max, nil
}
