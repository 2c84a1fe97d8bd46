package models

import "github.com/shopspring/decimal"

// Account is the balance state of one client.
// Total always equals Available + Held.
type Account struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns an unlocked account with zero balances.
func NewAccount(client uint16) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Balanced reports whether Total == Available + Held.
func (a Account) Balanced() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}
