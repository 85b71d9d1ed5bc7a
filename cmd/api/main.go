package main

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/config"
	"github.com/ariefcatur/go-hotel-reservations/internal/events"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/ariefcatur/go-hotel-reservations/internal/httpx"
	kafkax "github.com/ariefcatur/go-hotel-reservations/internal/kafka"
	"github.com/ariefcatur/go-hotel-reservations/internal/logger"
	"github.com/ariefcatur/go-hotel-reservations/internal/postgres"
	"github.com/ariefcatur/go-hotel-reservations/internal/redisx"
	"github.com/ariefcatur/go-hotel-reservations/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
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
	if cfg.JWTSecret == "" {
		log.Fatal("config", zap.String("error", "JWT_SECRET is required"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 16)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, hotel.TopicReservationCreated, 1024, log)
	pCreated.Start()
	pChanged := kafkax.NewProducer(cfg.KafkaBrokers, hotel.TopicReservationStatusChanged, 1024, log)
	pChanged.Start()

	// Engine & handlers
	catalog := &postgres.CatalogRepo{DB: db}
	reservations := &postgres.ReservationRepo{DB: db}
	engine := availability.NewEngine(catalog, reservations, loc, log.Named("availability"))
	bookings := availability.NewBookings(engine, &events.Publisher{
		Created:       pCreated,
		StatusChanged: pChanged,
		Service:       cfg.ServiceName,
	})

	router := httpx.NewRouter(log.Named("http"), cfg.CORSOrigins)
	h := &httpx.Handler{
		Engine:       engine,
		Bookings:     bookings,
		Reservations: reservations,
		Cache:        redisx.Cache{RDB: rdb},
		Log:          log,
	}
	h.Register(router, &httpx.Auth{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer}, httpx.NewRateLimiter(cfg.BookingRatePerMin))

	// Occupancy follows the calendar even when nothing is booked.
	rw := worker.NewReconcileWorker(engine, cfg.ReconcileInterval, log.Named("reconcile"))
	if err := rw.Start(ctx); err != nil {
		log.Fatal("reconcile worker", zap.Error(err))
	}

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	rw.Stop()
	cancel()
	pCreated.Close() // close inbox -> flush & close writer
	pChanged.Close()
	pCreated.WaitClosed()
	pChanged.WaitClosed()
}
