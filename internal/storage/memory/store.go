package memory

import (
	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// MemoryHistoryStore is an in-memory implementation of interfaces.HistoryStore.
// It is not safe for concurrent use; the owning ledger serializes access.
type MemoryHistoryStore struct {
	transactions map[uint32]models.Transaction
}

// NewMemoryHistoryStore creates an empty history.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		transactions: make(map[uint32]models.Transaction),
	}
}

// Get returns the funding transaction recorded under txID, if any.
func (m *MemoryHistoryStore) Get(txID uint32) (models.Transaction, bool) {
	tx, exists := m.transactions[txID]
	return tx, exists
}

// Save records tx. An id already present is left untouched, so entries are
// never modified once inserted.
func (m *MemoryHistoryStore) Save(tx models.Transaction) {
	if _, exists := m.transactions[tx.TxID]; exists {
		return
	}
	m.transactions[tx.TxID] = tx
}

func (m *MemoryHistoryStore) Len() int {
	return len(m.transactions)
}

// Compile-time check: ensure MemoryHistoryStore implements HistoryStore interface
var _ interfaces.HistoryStore = (*MemoryHistoryStore)(nil)
