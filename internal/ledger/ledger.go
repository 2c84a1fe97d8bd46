package ledger

import (
	"fmt"
	"sort"

	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Ledger owns every client account and the history of applied funding
// transactions. It processes one transaction at a time and is not safe for
// concurrent use.
type Ledger struct {
	accounts map[uint16]*models.Account
	history  interfaces.HistoryStore // written only by Process
}

// NewLedger creates a Ledger backed by the given history. The ledger must be
// the only writer to store.
func NewLedger(store interfaces.HistoryStore) *Ledger {
	return &Ledger{
		accounts: make(map[uint16]*models.Account),
		history:  store,
	}
}

// route is the outcome of classifying a transaction against history.
type route int

const (
	routeReject route = iota
	routeDeposit
	routeWithdrawal
	routeReferenced
)

func classify(tx models.Transaction, found bool) route {
	switch {
	case !found && tx.Kind == models.KindDeposit && tx.Amount.Valid:
		return routeDeposit
	case !found && tx.Kind == models.KindWithdrawal && tx.Amount.Valid:
		return routeWithdrawal
	case found && tx.Kind.IsReferencing() && !tx.Amount.Valid:
		return routeReferenced
	default:
		return routeReject
	}
}

// Process applies tx to its client's account. A failed call leaves every
// account and the history exactly as they were.
func (l *Ledger) Process(tx models.Transaction) error {
	account := l.getOrCreateAccount(tx.Client)

	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, tx.Client)
	}

	referenced, found := l.history.Get(tx.TxID)

	// rules work on a copy that is committed only on success
	next := *account
	var err error

	switch classify(tx, found) {
	case routeDeposit:
		err = deposit(&next, tx.Amount.Decimal)
	case routeWithdrawal:
		err = withdrawal(&next, tx.Amount.Decimal)
	case routeReferenced:
		err = processReferenced(&next, tx, referenced)
	default:
		if found {
			return fmt.Errorf("%w: %s references existing %s", ErrInvalidTransaction, tx, referenced)
		}
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, tx)
	}
	if err != nil {
		return err
	}

	if !next.Balanced() {
		return fmt.Errorf("%w: client %d", errUnbalanced, tx.Client)
	}
	*account = next

	if tx.Kind.IsFunding() {
		l.history.Save(tx)
	}
	return nil
}

func (l *Ledger) getOrCreateAccount(client uint16) *models.Account {
	account, exists := l.accounts[client]
	if !exists {
		created := models.NewAccount(client)
		account = &created
		l.accounts[client] = account
	}
	return account
}

// Account returns a snapshot of the client's account.
func (l *Ledger) Account(client uint16) (models.Account, bool) {
	account, exists := l.accounts[client]
	if !exists {
		return models.Account{}, false
	}
	return *account, true
}

// Accounts returns a snapshot of every account keyed by client id.
func (l *Ledger) Accounts() map[uint16]models.Account {
	out := make(map[uint16]models.Account, len(l.accounts))
	for client, account := range l.accounts {
		out[client] = *account
	}
	return out
}

// Recorded returns how many funding transactions are held in history.
func (l *Ledger) Recorded() int {
	return l.history.Len()
}

// SortedAccounts returns a snapshot of every account ordered by client id.
func (l *Ledger) SortedAccounts() []models.Account {
	out := make([]models.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		out = append(out, *account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

func deposit(account *models.Account, amount decimal.Decimal) error {
	account.Available = account.Available.Add(amount)
	account.Total = account.Total.Add(amount)
	return nil
}

func withdrawal(account *models.Account, amount decimal.Decimal) error {
	if amount.GreaterThan(account.Available) {
		return fmt.Errorf("%w: client %d has %s, requested %s",
			ErrInsufficientFunds, account.Client, account.Available, amount)
	}
	account.Available = account.Available.Sub(amount)
	account.Total = account.Total.Sub(amount)
	return nil
}

func processReferenced(account *models.Account, tx, referenced models.Transaction) error {
	if referenced.Client != tx.Client {
		return fmt.Errorf("%w: %s references client %d", ErrClientMismatch, tx, referenced.Client)
	}
	if !referenced.Amount.Valid {
		return fmt.Errorf("%w: referenced %s has no amount", ErrInvalidTransaction, referenced)
	}
	amount := referenced.Amount.Decimal

	switch tx.Kind {
	case models.KindDispute:
		return dispute(account, referenced.Kind, amount)
	case models.KindResolve:
		return resolve(account, amount)
	case models.KindChargeback:
		return chargeback(account, referenced.Kind, amount)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, tx)
	}
}

func dispute(account *models.Account, referencedKind models.TransactionKind, amount decimal.Decimal) error {
	switch referencedKind {
	case models.KindDeposit:
		account.Held = account.Held.Add(amount)
		account.Available = account.Available.Sub(amount)
	case models.KindWithdrawal:
		// the withdrawal already left total, so it comes back as held
		account.Held = account.Held.Add(amount)
		account.Total = account.Total.Add(amount)
	default:
		return fmt.Errorf("%w: of %s", ErrUnsupportedDispute, referencedKind)
	}
	return nil
}

func resolve(account *models.Account, amount decimal.Decimal) error {
	account.Held = account.Held.Sub(amount)
	account.Available = account.Available.Add(amount)
	return nil
}

func chargeback(account *models.Account, referencedKind models.TransactionKind, amount decimal.Decimal) error {
	switch referencedKind {
	case models.KindDeposit:
		account.Held = account.Held.Sub(amount)
		account.Total = account.Total.Sub(amount)
	case models.KindWithdrawal:
		account.Held = account.Held.Sub(amount)
		account.Available = account.Available.Add(amount)
	default:
		return fmt.Errorf("%w: of %s", ErrUnsupportedChargeback, referencedKind)
	}
	account.Locked = true
	return nil
}
