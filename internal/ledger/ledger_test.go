package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/sheikh-saqib/payments-engine/internal/storage/memory"
)

const (
	client       uint16 = 1
	depositTx    uint32 = 1
	withdrawalTx uint32 = 2
)

var (
	one = decimal.RequireFromString("1.0")
	two = decimal.RequireFromString("2.0")
)

func newLedger() *Ledger {
	return NewLedger(memory.NewMemoryHistoryStore())
}

func mustProcess(t *testing.T, l *Ledger, txs ...models.Transaction) {
	t.Helper()
	for _, tx := range txs {
		require.NoError(t, l.Process(tx), "process %s", tx)
	}
}

func requireAccount(t *testing.T, l *Ledger, c uint16, available, held, total string, locked bool) {
	t.Helper()
	account, ok := l.Account(c)
	require.True(t, ok, "account %d missing", c)
	assert.True(t, account.Available.Equal(decimal.RequireFromString(available)), "available=%s want %s", account.Available, available)
	assert.True(t, account.Held.Equal(decimal.RequireFromString(held)), "held=%s want %s", account.Held, held)
	assert.True(t, account.Total.Equal(decimal.RequireFromString(total)), "total=%s want %s", account.Total, total)
	assert.Equal(t, locked, account.Locked)
	assert.True(t, account.Balanced())
}

func TestDeposit(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))

	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestTransactionIDCollision(t *testing.T) {
	l := newLedger()
	deposit := models.NewDeposit(client, depositTx, one)
	mustProcess(t, l, deposit)

	err := l.Process(deposit)
	require.ErrorIs(t, err, ErrInvalidTransaction)
	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestCollisionAcrossKindsAndClients(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))

	require.ErrorIs(t, l.Process(models.NewWithdrawal(client, depositTx, one)), ErrInvalidTransaction)
	require.ErrorIs(t, l.Process(models.NewDeposit(2, depositTx, one)), ErrInvalidTransaction)

	requireAccount(t, l, client, "1", "0", "1", false)
	requireAccount(t, l, 2, "0", "0", "0", false)
}

func TestWithdrawal(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewWithdrawal(client, withdrawalTx, one),
	)

	requireAccount(t, l, client, "0", "0", "0", false)
}

func TestWithdrawTooMuch(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))

	err := l.Process(models.NewWithdrawal(client, withdrawalTx, two))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	requireAccount(t, l, client, "1", "0", "1", false)

	// a failed withdrawal is not recorded, so it cannot be disputed
	require.ErrorIs(t, l.Process(models.NewDispute(client, withdrawalTx)), ErrInvalidTransaction)
}

func TestFailedWithdrawalRetryWithSameID(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))
	require.Error(t, l.Process(models.NewWithdrawal(client, withdrawalTx, two)))

	mustProcess(t, l,
		models.NewDeposit(client, 3, one),
		models.NewWithdrawal(client, withdrawalTx, two),
	)
	requireAccount(t, l, client, "0", "0", "0", false)
}

func TestDisputeDeposit(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewDispute(client, depositTx),
	)

	requireAccount(t, l, client, "0", "1", "1", false)
}

func TestDisputeWithdrawal(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewWithdrawal(client, withdrawalTx, one),
		models.NewDispute(client, withdrawalTx),
	)

	requireAccount(t, l, client, "0", "1", "1", false)
}

func TestResolveDeposit(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewDispute(client, depositTx),
		models.NewResolve(client, depositTx),
	)

	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestResolveWithdrawal(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewWithdrawal(client, withdrawalTx, one),
		models.NewDispute(client, withdrawalTx),
		models.NewResolve(client, withdrawalTx),
	)

	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestChargebackDeposit(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewDispute(client, depositTx),
		models.NewChargeback(client, depositTx),
	)

	requireAccount(t, l, client, "0", "0", "0", true)

	err := l.Process(models.NewDeposit(client, 9, one))
	require.ErrorIs(t, err, ErrAccountLocked)
	requireAccount(t, l, client, "0", "0", "0", true)
}

func TestChargebackWithdrawal(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewWithdrawal(client, withdrawalTx, one),
		models.NewDispute(client, withdrawalTx),
		models.NewChargeback(client, withdrawalTx),
	)

	requireAccount(t, l, client, "1", "0", "1", true)
}

func TestLockedAccountRejectsEveryKind(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, two),
		models.NewDeposit(client, 3, one),
		models.NewDispute(client, depositTx),
		models.NewChargeback(client, depositTx),
	)
	before, _ := l.Account(client)

	for _, tx := range []models.Transaction{
		models.NewDeposit(client, 10, one),
		models.NewWithdrawal(client, 11, one),
		models.NewDispute(client, 3),
		models.NewResolve(client, 3),
		models.NewChargeback(client, 3),
	} {
		require.ErrorIs(t, l.Process(tx), ErrAccountLocked, "%s", tx)
	}

	after, _ := l.Account(client)
	assert.Equal(t, before, after)

	// the rejected deposit was not recorded
	mustProcess(t, l, models.NewDeposit(2, 10, one))
}

func TestReferencingUnknownTransaction(t *testing.T) {
	l := newLedger()
	for _, tx := range []models.Transaction{
		models.NewDispute(client, 42),
		models.NewResolve(client, 42),
		models.NewChargeback(client, 42),
	} {
		require.ErrorIs(t, l.Process(tx), ErrInvalidTransaction)
	}

	// the account is still created lazily
	requireAccount(t, l, client, "0", "0", "0", false)
}

func TestReferencingTransactionWithAmount(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))

	dispute := models.NewDispute(client, depositTx)
	dispute.Amount = decimal.NewNullDecimal(one)

	require.ErrorIs(t, l.Process(dispute), ErrInvalidTransaction)
	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestFundingTransactionWithoutAmount(t *testing.T) {
	l := newLedger()
	require.ErrorIs(t, l.Process(models.Transaction{Kind: models.KindDeposit, Client: client, TxID: depositTx}), ErrInvalidTransaction)
	require.ErrorIs(t, l.Process(models.Transaction{Kind: models.KindWithdrawal, Client: client, TxID: withdrawalTx}), ErrInvalidTransaction)

	// neither was recorded
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))
	requireAccount(t, l, client, "1", "0", "1", false)
}

func TestClientMismatch(t *testing.T) {
	l := newLedger()
	mustProcess(t, l, models.NewDeposit(client, depositTx, one))

	err := l.Process(models.NewDispute(2, depositTx))
	require.ErrorIs(t, err, ErrClientMismatch)

	requireAccount(t, l, client, "1", "0", "1", false)
	requireAccount(t, l, 2, "0", "0", "0", false)
}

func TestRepeatedDisputesAreNotGuarded(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewDispute(client, depositTx),
		models.NewResolve(client, depositTx),
		models.NewDispute(client, depositTx),
		models.NewDispute(client, depositTx),
	)

	requireAccount(t, l, client, "-1", "2", "1", false)
}

func TestResolveWithoutDispute(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(client, depositTx, one),
		models.NewResolve(client, depositTx),
	)

	requireAccount(t, l, client, "2", "-1", "1", false)
}

func TestAccountsSnapshotIsCopy(t *testing.T) {
	l := newLedger()
	mustProcess(t, l,
		models.NewDeposit(3, 1, one),
		models.NewDeposit(1, 2, two),
	)

	snapshot := l.Accounts()
	require.Len(t, snapshot, 2)
	a := snapshot[3]
	a.Locked = true
	snapshot[3] = a

	requireAccount(t, l, 3, "1", "0", "1", false)

	sorted := l.SortedAccounts()
	require.Len(t, sorted, 2)
	assert.EqualValues(t, 1, sorted[0].Client)
	assert.EqualValues(t, 3, sorted[1].Client)
}

func TestRecordedCountsAppliedFundingOnly(t *testing.T) {
	l := newLedger()
	_ = l.Process(models.NewDeposit(client, depositTx, one))
	_ = l.Process(models.NewWithdrawal(client, withdrawalTx, two))
	_ = l.Process(models.NewDispute(client, depositTx))
	_ = l.Process(models.NewDeposit(client, depositTx, one))

	assert.Equal(t, 1, l.Recorded())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "account_locked", Kind(ErrAccountLocked))
	assert.Equal(t, "insufficient_funds", Kind(errors.Join(errors.New("x"), ErrInsufficientFunds)))
	assert.Equal(t, "unknown", Kind(errors.New("boom")))
}

func TestInvariantHoldsOverMixedStream(t *testing.T) {
	l := newLedger()
	stream := []models.Transaction{
		models.NewDeposit(1, 1, decimal.RequireFromString("10.5")),
		models.NewDeposit(2, 2, decimal.RequireFromString("3.1234")),
		models.NewWithdrawal(1, 3, decimal.RequireFromString("4.25")),
		models.NewDispute(1, 1),
		models.NewWithdrawal(2, 4, decimal.RequireFromString("5")),
		models.NewDispute(2, 2),
		models.NewResolve(2, 2),
		models.NewChargeback(1, 1),
		models.NewDeposit(1, 5, one),
		models.NewDispute(2, 99),
	}
	for _, tx := range stream {
		_ = l.Process(tx)
		for _, account := range l.Accounts() {
			require.True(t, account.Balanced(), "after %s: %+v", tx, account)
		}
	}

	requireAccount(t, l, 1, "-4.25", "0", "-4.25", true)
	requireAccount(t, l, 2, "3.1234", "0", "3.1234", false)
}
