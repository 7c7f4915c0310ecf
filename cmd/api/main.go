package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/booking"
	"github.com/ariefcatur/go-pethotel-pos/internal/cart"
	"github.com/ariefcatur/go-pethotel-pos/internal/checkout"
	"github.com/ariefcatur/go-pethotel-pos/internal/config"
	"github.com/ariefcatur/go-pethotel-pos/internal/counter"
	"github.com/ariefcatur/go-pethotel-pos/internal/httpx"
	"github.com/ariefcatur/go-pethotel-pos/internal/inventory"
	kafkax "github.com/ariefcatur/go-pethotel-pos/internal/kafka"
	"github.com/ariefcatur/go-pethotel-pos/internal/logger"
	"github.com/ariefcatur/go-pethotel-pos/internal/membership"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/mongox"
	"github.com/ariefcatur/go-pethotel-pos/internal/notify"
	"github.com/ariefcatur/go-pethotel-pos/internal/payments"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/postgres"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	lg, err := logger.New(cfg.Env, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rates, err := pricing.ParseRates(cfg.SalesTaxRate, cfg.StaffDiscountRate)
	if err != nil {
		lg.Fatal("invalid rates", zap.Error(err))
	}

	// Mongo: carts, users, products, rooms, bookings
	mdb, err := mongox.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		lg.Fatal("mongo connect", zap.Error(err))
	}
	defer mongox.Disconnect(mdb)

	// Postgres: payments ledger
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		lg.Fatal("migrate", zap.Error(err))
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	ids, err := counter.New(cfg.CounterBackend, rdb, mdb, cfg.SnowflakeNode)
	if err != nil {
		lg.Fatal("counter", zap.Error(err))
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, pos.TopicReceiptRequested, 1024, lg)
	prod.Start()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, cfg.ServiceName)

	carts := cart.NewLoader(cart.NewMongoStore(mdb), lg)
	ledger := membership.NewLedger(membership.NewMongoStore(mdb), lg)
	flow := &checkout.Service{
		Cart:        carts,
		Ledger:      ledger,
		Redemptions: checkout.NewRedisRedemptions(rdb),
		Committer: &checkout.Committer{
			Counter:  ids,
			Stock:    &inventory.Service{Store: inventory.NewMongoStore(mdb), Metrics: m, Log: lg},
			Cart:     carts,
			Payments: &payments.Repo{DB: db},
			Notifier: &notify.KafkaDispatcher{Producer: prod, Service: cfg.ServiceName},
			Metrics:  m,
			Log:      lg,
		},
		Rates:   rates,
		Metrics: m,
		Log:     lg,
	}
	stays := &booking.Service{
		Rooms:    booking.NewRoomMongoStore(mdb),
		Bookings: booking.NewBookingMongoStore(mdb),
		Counter:  ids,
		Log:      lg,
	}

	router := httpx.NewRouter(lg, m, reg)
	(&httpx.CheckoutHandler{Flow: flow, Redis: rdb, Log: lg}).Register(router)
	(&httpx.PaymentsHandler{Payments: &payments.Repo{DB: db}, Members: ledger, Redis: rdb, Log: lg}).Register(router)
	(&httpx.BookingsHandler{Flow: stays, Log: lg}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		lg.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("counter", cfg.CounterBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	lg.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
		_ = srv.Close()
	}
	prod.Close()      // later publishes get ErrProducerClosed; flush the buffer
	prod.WaitClosed() // writer closed
	cancel()
}
