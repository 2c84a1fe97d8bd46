package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionKind is the instruction carried by a Transaction.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindDispute    TransactionKind = "dispute"
	KindResolve    TransactionKind = "resolve"
	KindChargeback TransactionKind = "chargeback"
)

var ErrUnknownKind = errors.New("unknown transaction type")

// ParseTransactionKind accepts the lowercase wire name of a kind, ignoring
// surrounding whitespace and case.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// IsFunding reports whether k moves money and may later be referenced.
func (k TransactionKind) IsFunding() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// IsReferencing reports whether k points at an earlier funding transaction.
func (k TransactionKind) IsReferencing() bool {
	return k == KindDispute || k == KindResolve || k == KindChargeback
}

// Transaction is one instruction from the input stream. Referencing
// transactions reuse the TxID of the funding transaction they target and
// carry no amount.
type Transaction struct {
	Kind   TransactionKind
	Client uint16
	TxID   uint32
	Amount decimal.NullDecimal
}

func NewDeposit(client uint16, tx uint32, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindDeposit, Client: client, TxID: tx, Amount: decimal.NewNullDecimal(amount)}
}

func NewWithdrawal(client uint16, tx uint32, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindWithdrawal, Client: client, TxID: tx, Amount: decimal.NewNullDecimal(amount)}
}

func NewDispute(client uint16, tx uint32) Transaction {
	return Transaction{Kind: KindDispute, Client: client, TxID: tx}
}

func NewResolve(client uint16, tx uint32) Transaction {
	return Transaction{Kind: KindResolve, Client: client, TxID: tx}
}

func NewChargeback(client uint16, tx uint32) Transaction {
	return Transaction{Kind: KindChargeback, Client: client, TxID: tx}
}

func (t Transaction) String() string {
	amount := "-"
	if t.Amount.Valid {
		amount = t.Amount.Decimal.String()
	}
	return fmt.Sprintf("%s client=%d tx=%d amount=%s", t.Kind, t.Client, t.TxID, amount)
}
