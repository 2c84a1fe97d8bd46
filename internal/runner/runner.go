package runner

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/ids"
	"github.com/sheikh-saqib/payments-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-engine/internal/metrics"
	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/sheikh-saqib/payments-engine/internal/models/events"
)

// TransactionSource yields transactions in input order. Read returns io.EOF
// when the stream is exhausted.
type TransactionSource interface {
	Read() (models.Transaction, error)
}

// Summary counts what happened during one run.
type Summary struct {
	Processed int
	Applied   int
	Rejected  int
	Malformed int
}

type Runner struct {
	ledger      *ledger.Ledger
	publisher   interfaces.EventPublisher
	metrics     *metrics.Metrics
	log         *zap.Logger
	runID       string
	recoverable func(error) bool
	now         func() time.Time
}

// New creates a Runner. recoverable decides which source errors skip a
// single record instead of aborting the run.
func New(l *ledger.Ledger, pub interfaces.EventPublisher, m *metrics.Metrics, log *zap.Logger, runID string, recoverable func(error) bool) *Runner {
	if recoverable == nil {
		recoverable = func(error) bool { return false }
	}
	return &Runner{
		ledger:      l,
		publisher:   pub,
		metrics:     m,
		log:         log.With(zap.String("run_id", runID)),
		runID:       runID,
		recoverable: recoverable,
		now:         time.Now,
	}
}

func (r *Runner) RunID() string { return r.runID }

// Run feeds every transaction from src to the ledger, strictly in order.
// Rejected transactions are logged and skipped; only source failures and
// context cancellation end the run early.
func (r *Runner) Run(ctx context.Context, src TransactionSource) (Summary, error) {
	var summary Summary

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		tx, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !r.recoverable(err) {
				return summary, err
			}
			summary.Malformed++
			r.metrics.ObserveTransaction("", metrics.OutcomeMalformed)
			r.log.Warn("skipping malformed record", zap.Error(err))
			continue
		}

		summary.Processed++
		if err := r.Apply(ctx, tx); err != nil {
			summary.Rejected++
		} else {
			summary.Applied++
		}
	}

	r.metrics.ObserveAccounts(r.ledger.SortedAccounts())
	r.log.Info("run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("malformed", summary.Malformed),
		zap.Int("recorded", r.ledger.Recorded()),
	)
	return summary, nil
}

// Apply processes a single transaction and reports it. The ledger error is
// returned to the caller unchanged.
func (r *Runner) Apply(ctx context.Context, tx models.Transaction) error {
	err := r.ledger.Process(tx)

	event := events.TransactionProcessed{
		EventID:    ids.NewEventID(),
		RunID:      r.runID,
		Type:       string(tx.Kind),
		Client:     tx.Client,
		TxID:       tx.TxID,
		Outcome:    events.OutcomeApplied,
		OccurredAt: r.now().UTC(),
	}
	if tx.Amount.Valid {
		amount := tx.Amount.Decimal
		event.Amount = &amount
	}

	if err != nil {
		event.Outcome = events.OutcomeRejected
		event.Error = ledger.Kind(err)
		r.metrics.ObserveTransaction(tx.Kind, metrics.OutcomeRejected)
		r.log.Debug("transaction rejected",
			zap.String("type", string(tx.Kind)),
			zap.Uint16("client", tx.Client),
			zap.Uint32("tx", tx.TxID),
			zap.Error(err),
		)
	} else {
		r.metrics.ObserveTransaction(tx.Kind, metrics.OutcomeApplied)
	}

	if pubErr := r.publisher.Publish(ctx, clientKey(tx.Client), event); pubErr != nil {
		r.log.Error("publish transaction event", zap.Uint32("tx", tx.TxID), zap.Error(pubErr))
	}
	return err
}

// Report exports the final accounts to store and announces the export.
func (r *Runner) Report(ctx context.Context, store interfaces.AccountStore) error {
	accounts := r.ledger.SortedAccounts()
	if err := store.SaveAccounts(ctx, r.runID, accounts); err != nil {
		return err
	}

	locked := 0
	for _, a := range accounts {
		if a.Locked {
			locked++
		}
	}
	event := events.AccountsReported{
		EventID:    ids.NewEventID(),
		RunID:      r.runID,
		Accounts:   len(accounts),
		Locked:     locked,
		OccurredAt: r.now().UTC(),
	}
	if err := r.publisher.Publish(ctx, r.runID, event); err != nil {
		r.log.Error("publish report event", zap.Error(err))
	}
	r.log.Info("accounts exported", zap.Int("accounts", len(accounts)), zap.Int("locked", locked))
	return nil
}

func clientKey(client uint16) string {
	return strconv.FormatUint(uint64(client), 10)
}
