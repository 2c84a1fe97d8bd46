package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-engine/internal/config"
	"github.com/sheikh-saqib/payments-engine/internal/events/kafka"
	"github.com/sheikh-saqib/payments-engine/internal/events/nop"
	"github.com/sheikh-saqib/payments-engine/internal/httpapi"
	"github.com/sheikh-saqib/payments-engine/internal/ids"
	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-engine/internal/logging"
	"github.com/sheikh-saqib/payments-engine/internal/metrics"
	"github.com/sheikh-saqib/payments-engine/internal/runner"
	"github.com/sheikh-saqib/payments-engine/internal/storage/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	var publisher interfaces.EventPublisher = nop.Publisher{}
	if cfg.KafkaEnabled() {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer publisher.Close()

	m := metrics.New()
	ledgerService := ledger.NewLedger(memory.NewMemoryHistoryStore())
	r := runner.New(ledgerService, publisher, m, logger, ids.NewRunID(), nil)
	handler := httpapi.NewHandler(httpapi.NewSerialLedger(ledgerService, r), logger, m)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("run_id", r.RunID()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
