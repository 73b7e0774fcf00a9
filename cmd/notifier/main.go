package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/greenleaf/nursery-market/internal/config"
	kafkax "github.com/greenleaf/nursery-market/internal/kafka"
	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/notifier"
	"github.com/greenleaf/nursery-market/internal/storage"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis: dipakai untuk dedup, dan jadi store default juga
	rdb := storage.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()

	var store storage.Store
	switch cfg.StorageBackend {
	case "memory":
		store = storage.NewMemory()
	case "postgres":
		db, err := storage.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db")
		}
		defer db.Close()
		store = &storage.Postgres{DB: db}
	default:
		store = &storage.Redis{RDB: rdb}
	}

	svc := notifier.Service{
		Market: market.NewService(store, nil, cfg.ServiceName+"-notifier"),
		Redis:  rdb,
		Name:   cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	topics := []string{market.TopicPlantUpdated, market.TopicOrderStatus}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers)

	go func() {
		log.Info().Str("group", group).Strs("topics", topics).Int("workers", workers).Msg("notifier consumer started")
		if err := cons.Start(ctx, svc.Handle); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
