package interfaces

import (
	"context"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// AccountStore receives the final account report of a run.
type AccountStore interface {
	SaveAccounts(ctx context.Context, runID string, accounts []models.Account) error
}
