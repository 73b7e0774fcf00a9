package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/config"
	"github.com/greenleaf/nursery-market/internal/httpx"
	kafkax "github.com/greenleaf/nursery-market/internal/kafka"
	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/seed"
	"github.com/greenleaf/nursery-market/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store backend
	var store storage.Store
	switch cfg.StorageBackend {
	case "memory":
		store = storage.NewMemory()
	case "postgres":
		db, err := storage.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		defer db.Close()
		pg := &storage.Postgres{DB: db}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("db schema")
		}
		store = pg
	default:
		rdb := storage.NewRedisClient(cfg.RedisAddr)
		defer rdb.Close()
		store = &storage.Redis{RDB: rdb}
	}

	// Kafka producer (optional; tanpa broker event bus mati)
	var events market.Publisher
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		events = prod
	}

	svc := market.NewService(store, events, cfg.ServiceName)
	authSvc := auth.NewService(svc, &auth.SessionStore{Store: store}, cfg.AdminSecret)

	if cfg.SeedDemo {
		if err := seed.EnsureDemoData(ctx, store); err != nil {
			log.Fatal().Err(err).Msg("seed")
		}
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Auth: authSvc}).Register(router)
	(&httpx.CatalogHandler{Market: svc, Auth: authSvc}).Register(router)
	(&httpx.CartHandler{Market: svc, Auth: authSvc}).Register(router)
	(&httpx.SellerHandler{Market: svc, Auth: authSvc}).Register(router)
	(&httpx.AdminHandler{Market: svc, Auth: authSvc}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.StorageBackend).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		cancel()          // stop producer loop
		prod.WaitClosed() // drain
	}
}
