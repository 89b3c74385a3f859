package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/travelport/pricesync/internal/adapter/storage"
	"github.com/travelport/pricesync/internal/config"
	"github.com/travelport/pricesync/internal/core/domain"
	"github.com/travelport/pricesync/internal/core/service"
	"github.com/travelport/pricesync/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Trip backend (relational).
	db, err := sql.Open("mysql", cfg.TripMySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Optional durable anchor records.
	var (
		rdb          *redis.Client
		hotelAnchors port.AnchorRepository
		tripAnchors  port.AnchorRepository
	)
	if cfg.AnchorRedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.AnchorRedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		hotelAnchors = storage.NewRedisAnchorAdapter(rdb, domain.FamilyHotel)
		tripAnchors = storage.NewRedisAnchorAdapter(rdb, domain.FamilyTrip)
		logger.Info("connected to redis", zap.String("addr", cfg.AnchorRedisAddr))
	}

	hotelRepo := storage.NewHotelAPIAdapter(cfg.HotelAPIBaseURL, cfg.OpTimeout, cfg.HotelMaxRooms)
	tripRepo := storage.NewTripStoreAdapter(db, cfg.TripSeatsTrip, cfg.TripSeatsTrain)

	hotelProfile := domain.HotelProfile()
	hotelProfile.MinBandFactor = cfg.HotelMinBand
	hotelProfile.MaxBandFactor = cfg.HotelMaxBand
	hotelProfile.DefaultUnits = cfg.HotelMaxRooms

	tripProfile := domain.TripProfile()
	tripProfile.MinBandFactor = cfg.TripMinBand
	tripProfile.MaxBandFactor = cfg.TripMaxBand
	tripProfile.DefaultUnits = cfg.TripSeatsTrip
	tripProfile.HighCapacityUnits = cfg.TripSeatsTrain

	opts := service.EngineOptions{
		Interval:  cfg.SyncInterval,
		Workers:   cfg.Workers,
		OpTimeout: cfg.OpTimeout,
	}

	hotelEngine := service.NewSyncEngine(hotelRepo,
		service.NewAnchorStore(hotelAnchors, logger), hotelProfile, opts, logger)
	tripEngine := service.NewSyncEngine(tripRepo,
		service.NewAnchorStore(tripAnchors, logger), tripProfile, opts, logger)

	var wg sync.WaitGroup
	for _, engine := range []*service.SyncEngine{hotelEngine, tripEngine} {
		wg.Add(1)
		go func(e *service.SyncEngine) {
			defer wg.Done()
			e.Run(ctx)
		}(engine)
	}

	// gRPC liveness surface for orchestration probes.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.HealthAddr), zap.Error(err))
	}
	go func() {
		logger.Info("health server listening", zap.String("addr", cfg.HealthAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Warn("health server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	// Stop scheduling new cycles; dispatched per-entity writes finish on
	// their own timeouts inside the running cycle.
	cancel()
	wg.Wait()
	logger.Info("sync engines stopped")

	grpcServer.GracefulStop()
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info("connections closed")
}
