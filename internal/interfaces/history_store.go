package interfaces

import "github.com/sheikh-saqib/payments-engine/internal/models"

// HistoryStore is the append-only record of applied funding transactions,
// keyed by transaction id. The ledger owning it is its only writer.
type HistoryStore interface {
	Get(txID uint32) (models.Transaction, bool)
	Save(tx models.Transaction)
	Len() int
}
