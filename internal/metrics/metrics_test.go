package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveTransaction(t *testing.T) {
	m := New()
	m.ObserveTransaction(models.KindDeposit, OutcomeApplied)
	m.ObserveTransaction(models.KindDeposit, OutcomeApplied)
	m.ObserveTransaction(models.KindWithdrawal, OutcomeRejected)
	m.ObserveTransaction("", OutcomeMalformed)

	body := scrape(t, m)
	assert.Contains(t, body, `payments_transactions_total{outcome="applied",type="deposit"} 2`)
	assert.Contains(t, body, `payments_transactions_total{outcome="rejected",type="withdrawal"} 1`)
	assert.Contains(t, body, `payments_transactions_total{outcome="malformed",type="unknown"} 1`)
}

func TestObserveAccounts(t *testing.T) {
	m := New()
	m.ObserveAccounts([]models.Account{{Client: 1}, {Client: 2, Locked: true}, {Client: 3}})

	body := scrape(t, m)
	assert.Contains(t, body, "payments_accounts 3")
	assert.Contains(t, body, "payments_locked_accounts 1")
}
