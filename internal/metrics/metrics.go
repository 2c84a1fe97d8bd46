package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
)

// Metrics groups the engine collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	transactions   *prometheus.CounterVec
	accounts       prometheus.Gauge
	lockedAccounts prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_transactions_total",
				Help: "Transactions fed to the ledger by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "payments_accounts",
			Help: "Client accounts known to the ledger.",
		}),
		lockedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "payments_locked_accounts",
			Help: "Client accounts locked by a chargeback.",
		}),
	}
	m.registry.MustRegister(m.transactions, m.accounts, m.lockedAccounts)
	return m
}

// ObserveTransaction counts one transaction. kind may be empty for records
// that could not be decoded.
func (m *Metrics) ObserveTransaction(kind models.TransactionKind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	m.transactions.WithLabelValues(string(kind), outcome).Inc()
}

// ObserveAccounts records the current account population.
func (m *Metrics) ObserveAccounts(accounts []models.Account) {
	locked := 0
	for _, a := range accounts {
		if a.Locked {
			locked++
		}
	}
	m.accounts.Set(float64(len(accounts)))
	m.lockedAccounts.Set(float64(locked))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
