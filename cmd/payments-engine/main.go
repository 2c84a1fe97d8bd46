// Command payments-engine reads a CSV stream of transactions and prints the
// final state of every account to stdout.
//
//	payments-engine transactions.csv > accounts.csv
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-engine/internal/config"
	"github.com/sheikh-saqib/payments-engine/internal/csvio"
	"github.com/sheikh-saqib/payments-engine/internal/events/kafka"
	"github.com/sheikh-saqib/payments-engine/internal/events/nop"
	"github.com/sheikh-saqib/payments-engine/internal/ids"
	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-engine/internal/logging"
	"github.com/sheikh-saqib/payments-engine/internal/metrics"
	"github.com/sheikh-saqib/payments-engine/internal/runner"
	"github.com/sheikh-saqib/payments-engine/internal/storage/memory"
	"github.com/sheikh-saqib/payments-engine/internal/storage/postgres"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <transactions.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "payments-engine:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader, err := csvio.NewReader(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var publisher interfaces.EventPublisher = nop.Publisher{}
	if cfg.KafkaEnabled() {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("publishing events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	l := ledger.NewLedger(memory.NewMemoryHistoryStore())
	r := runner.New(l, publisher, metrics.New(), log, ids.NewRunID(), isRowError)

	if _, err := r.Run(ctx, reader); err != nil {
		return err
	}

	if err := csvio.WriteAccounts(os.Stdout, l.SortedAccounts()); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}

	if cfg.DatabaseEnabled() {
		if err := export(ctx, cfg.DatabaseURL, r); err != nil {
			return fmt.Errorf("export accounts: %w", err)
		}
	}
	return nil
}

func export(ctx context.Context, dsn string, r *runner.Runner) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	store := postgres.NewPostgresAccountStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return r.Report(ctx, store)
}

func isRowError(err error) bool {
	var rowErr *csvio.RowError
	return errors.As(err, &rowErr)
}
