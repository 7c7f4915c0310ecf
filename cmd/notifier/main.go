package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/config"
	kafkax "github.com/ariefcatur/go-pethotel-pos/internal/kafka"
	"github.com/ariefcatur/go-pethotel-pos/internal/logger"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/notify"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
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
	service := cfg.ServiceName + "-notifier"

	lg, err := logger.New(cfg.Env, service)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, service)

	relay := &notify.Relay{
		Sender:      notify.NewWebhookSender(cfg.NotifyWebhookURL, nil, lg),
		Redis:       rdb,
		Metrics:     m,
		Log:         lg,
		ServiceName: service,
	}

	workers := mustAtoi(os.Getenv("NOTIFY_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifyGroup, pos.TopicReceiptRequested, workers, lg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		lg.Info("notifier consumer started",
			zap.String("group", cfg.NotifyGroup),
			zap.String("topic", pos.TopicReceiptRequested),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, relay.HandleReceiptRequested); err != nil && !errors.Is(err, context.Canceled) {
			lg.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// metrics only; the notifier serves no API
	msrv := &http.Server{Addr: getenv("NOTIFY_METRICS_ADDR", ":9091"), Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("metrics listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	lg.Info("shutting down consumer")
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		lg.Warn("consumer did not stop in time")
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = msrv.Shutdown(ctx2)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
