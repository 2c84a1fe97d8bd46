package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// TransactionProcessed is emitted once for every transaction fed to the ledger.
type TransactionProcessed struct {
	EventID    string           `json:"event_id"`
	RunID      string           `json:"run_id"`
	Type       string           `json:"type"`
	Client     uint16           `json:"client"`
	TxID       uint32           `json:"tx"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Outcome    string           `json:"outcome"`
	Error      string           `json:"error,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// AccountsReported is emitted once a run has finished and accounts were exported.
type AccountsReported struct {
	EventID    string    `json:"event_id"`
	RunID      string    `json:"run_id"`
	Accounts   int       `json:"accounts"`
	Locked     int       `json:"locked"`
	OccurredAt time.Time `json:"occurred_at"`
}
