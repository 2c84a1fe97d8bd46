// Package httpapi exposes the ledger over HTTP for online ingestion.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-engine/internal/metrics"
	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/sheikh-saqib/payments-engine/internal/money"
)

// Applier applies one transaction to the ledger.
type Applier interface {
	Apply(ctx context.Context, tx models.Transaction) error
}

// SerialLedger funnels every request through one lock so the ledger sees
// transactions one at a time, in arrival order.
type SerialLedger struct {
	mu      sync.Mutex
	applier Applier
	ledger  *ledger.Ledger
}

func NewSerialLedger(l *ledger.Ledger, applier Applier) *SerialLedger {
	return &SerialLedger{ledger: l, applier: applier}
}

func (s *SerialLedger) Apply(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applier.Apply(ctx, tx)
}

func (s *SerialLedger) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.SortedAccounts()
}

func (s *SerialLedger) Account(client uint16) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Account(client)
}

type transactionRequest struct {
	Type   string          `json:"type"`
	Client uint16          `json:"client"`
	TxID   uint32          `json:"tx"`
	Amount json.RawMessage `json:"amount,omitempty"`
}

// amount accepts the amount as a JSON string or number and applies the same
// lenient parsing as the batch input: anything unparsable is absent.
func (r transactionRequest) amount() decimal.NullDecimal {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.NullDecimal{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	return money.Parse(text)
}

type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		Client:    a.Client,
		Available: money.Format(a.Available),
		Held:      money.Format(a.Held),
		Total:     money.Format(a.Total),
		Locked:    a.Locked,
	}
}

type Handler struct {
	svc     *SerialLedger
	log     *zap.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

func NewHandler(svc *SerialLedger, log *zap.Logger, m *metrics.Metrics) *Handler {
	h := &Handler{svc: svc, log: log, metrics: m, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("POST /transactions", h.postTransaction)
	h.mux.HandleFunc("GET /accounts", h.listAccounts)
	h.mux.HandleFunc("GET /accounts/{client}", h.getAccount)
	h.mux.Handle("GET /metrics", m.Handler())
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("decode transaction request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	kind, err := models.ParseTransactionKind(req.Type)
	if err != nil {
		h.metrics.ObserveTransaction("", metrics.OutcomeMalformed)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	tx := models.Transaction{Kind: kind, Client: req.Client, TxID: req.TxID, Amount: req.amount()}

	if err := h.svc.Apply(r.Context(), tx); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ledger.ErrAccountLocked) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Kind: ledger.Kind(err)})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAccounts(w http.ResponseWriter, _ *http.Request) {
	accounts := h.svc.Accounts()
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	client, err := strconv.ParseUint(r.PathValue("client"), 10, 16)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "client must be an unsigned 16-bit integer"})
		return
	}

	account, ok := h.svc.Account(uint16(client))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "account not found"})
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
