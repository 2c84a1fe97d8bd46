package ledger

import "errors"

var (
	ErrAccountLocked         = errors.New("account is locked")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrClientMismatch        = errors.New("client does not match referenced transaction")
	ErrUnsupportedDispute    = errors.New("unsupported dispute")
	ErrUnsupportedChargeback = errors.New("unsupported chargeback")

	// unreachable while every rule keeps the books balanced
	errUnbalanced = errors.New("account total does not equal available plus held")
)

// Kind returns a short machine name for a ledger error, or "unknown" for
// errors this package did not produce.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrClientMismatch):
		return "client_mismatch"
	case errors.Is(err, ErrUnsupportedDispute):
		return "unsupported_dispute"
	case errors.Is(err, ErrUnsupportedChargeback):
		return "unsupported_chargeback"
	default:
		return "unknown"
	}
}
