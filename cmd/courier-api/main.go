package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BearBump/CourierDesk/config"
	"github.com/BearBump/CourierDesk/internal/api/courierapi"
	"github.com/BearBump/CourierDesk/internal/broker/kafka"
	"github.com/BearBump/CourierDesk/internal/cache/rediscache"
	"github.com/BearBump/CourierDesk/internal/services/rates"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/users"
	"github.com/BearBump/CourierDesk/internal/storage/pgcourier"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	httpAddr := cfg.CourierDesk.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	trackTTL := time.Duration(cfg.CourierDesk.TrackCacheTTLSeconds) * time.Second
	if trackTTL <= 0 {
		trackTTL = 2 * time.Minute
	}
	sessionTTL := time.Duration(cfg.CourierDesk.SessionTTLHours) * time.Hour
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}

	st, err := pgcourier.New(cfg.Database.ConnString())
	if err != nil {
		panic(err)
	}
	defer st.Close()

	rc := rediscache.New(cfg.Redis.Addr())
	rl := rediscache.NewRateLimiter(cfg.Redis.Addr())

	producer := kafka.NewProducer(cfg.Kafka.Brokers())
	defer func() { _ = producer.Close() }()

	shipmentSvc := shipments.New(st, rc, producer, trackTTL).
		WithStrictTransitions(cfg.CourierDesk.StrictTransitions)
	rateSvc := rates.New(st)
	userSvc := users.New(st, rl, producer, sessionTTL)

	h := courierapi.New(shipmentSvc, rateSvc, userSvc, os.Getenv("swaggerPath"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runAPIServer(ctx, apiOpts{httpAddr: httpAddr}, h, st); err != nil && err != context.Canceled {
		panic(err)
	}
}
