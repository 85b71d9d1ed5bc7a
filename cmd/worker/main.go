package main

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/config"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	kafkax "github.com/ariefcatur/go-hotel-reservations/internal/kafka"
	"github.com/ariefcatur/go-hotel-reservations/internal/logger"
	"github.com/ariefcatur/go-hotel-reservations/internal/notify"
	"github.com/ariefcatur/go-hotel-reservations/internal/postgres"
	"github.com/ariefcatur/go-hotel-reservations/internal/redisx"
	"github.com/ariefcatur/go-hotel-reservations/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.LogDevelopment)
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 4)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	engine := availability.NewEngine(&postgres.CatalogRepo{DB: db}, &postgres.ReservationRepo{DB: db}, loc, log.Named("availability"))

	notifier := &notify.Service{
		Dedup:  redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-notify"},
		Mailer: notify.LogMailer{Log: log.Named("mail")},
		From:   cfg.MailFrom,
		Log:    log.Named("notify"),
	}

	consumers := []struct {
		topic   string
		group   string
		workers int
		handler kafkax.Handler
	}{
		{hotel.TopicReservationCreated, cfg.WorkerGroup + "-notify", cfg.WorkerConcurrency, notifier.HandleReservationCreated},
		// one worker: sweeps are global, running them in parallel gains nothing
		{hotel.TopicReservationStatusChanged, cfg.WorkerGroup + "-reconcile", 1, worker.StatusChangedHandler(engine, log.Named("reconcile"))},
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, c.group, c.topic, c.workers, log)
		wg.Add(1)
		go func(topic, group string, workers int, h kafkax.Handler) {
			defer wg.Done()
			log.Info("consumer started", zap.String("topic", topic), zap.String("group", group), zap.Int("workers", workers))
			if err := cons.Start(ctx, h); err != nil {
				log.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(c.topic, c.group, c.workers, c.handler)
	}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumers")
	cancel()
	wg.Wait()
}
