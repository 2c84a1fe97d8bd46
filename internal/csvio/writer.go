package csvio

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/sheikh-saqib/payments-engine/internal/money"
)

var accountHeader = []string{"client", "available", "held", "total", "locked"}

// WriteAccounts writes one row per account, ordered by client id, with every
// balance rendered to four decimal places.
func WriteAccounts(w io.Writer, accounts []models.Account) error {
	sorted := make([]models.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	cw := csv.NewWriter(w)
	if err := cw.Write(accountHeader); err != nil {
		return err
	}

	for _, a := range sorted {
		row := []string{
			strconv.FormatUint(uint64(a.Client), 10),
			money.Format(a.Available),
			money.Format(a.Held),
			money.Format(a.Total),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
