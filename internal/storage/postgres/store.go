package postgres

import (
	"context"
	"database/sql"
	"time"

	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// PostgresAccountStore exports the final account report of every run. Rows
// are keyed by (run_id, client), so each run keeps its own complete report.
// It is an output sink only; the ledger never reads from it.
type PostgresAccountStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{
		db:  db,
		now: time.Now,
	}
}

const createAccountsTable = `CREATE TABLE IF NOT EXISTS accounts (
	run_id     TEXT NOT NULL,
	client     INTEGER NOT NULL,
	available  NUMERIC(20,4) NOT NULL,
	held       NUMERIC(20,4) NOT NULL,
	total      NUMERIC(20,4) NOT NULL,
	locked     BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, client)
)`

func (p *PostgresAccountStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createAccountsTable)
	return err
}

func (p *PostgresAccountStore) saveAccount(ctx context.Context, dbTx *sql.Tx, runID string, account models.Account, at time.Time) error {
	const query = `INSERT INTO accounts (client, available, held, total, locked, run_id, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (run_id, client) DO UPDATE SET
		available = EXCLUDED.available,
		held = EXCLUDED.held,
		total = EXCLUDED.total,
		locked = EXCLUDED.locked,
		updated_at = EXCLUDED.updated_at`

	_, err := dbTx.ExecContext(ctx, query,
		int32(account.Client),
		account.Available,
		account.Held,
		account.Total,
		account.Locked,
		runID,
		at,
	)
	return err
}

// SaveAccounts writes every account of runID in one database transaction.
// Saving the same run again replaces its rows.
func (p *PostgresAccountStore) SaveAccounts(ctx context.Context, runID string, accounts []models.Account) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	at := p.now().UTC()
	for _, account := range accounts {
		if err = p.saveAccount(ctx, dbTx, runID, account, at); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

var _ interfaces.AccountStore = (*PostgresAccountStore)(nil)
