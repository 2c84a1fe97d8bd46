// Package csvio decodes transaction records from delimited text and encodes
// the final account report.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sheikh-saqib/payments-engine/internal/models"
	"github.com/sheikh-saqib/payments-engine/internal/money"
)

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrMalformedRecord = errors.New("malformed record")
)

// RowError describes a record that could not be decoded. Reading may
// continue after it.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reader decodes transactions one record at a time.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

// NewReader reads the header row of r. Column names are matched after
// trimming and lowercasing; type, client and tx are required.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "client", "tx"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Read returns the next transaction, io.EOF at the end of input, or a
// *RowError for a record that cannot be decoded.
func (r *Reader) Read() (models.Transaction, error) {
	record, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return models.Transaction{}, &RowError{Line: parseErr.Line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, parseErr.Err)}
		}
		return models.Transaction{}, err
	}

	line, _ := r.csv.FieldPos(0)
	tx, err := r.decode(record)
	if err != nil {
		return models.Transaction{}, &RowError{Line: line, Err: err}
	}
	return tx, nil
}

func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) decode(record []string) (models.Transaction, error) {
	kind, err := models.ParseTransactionKind(r.field(record, "type"))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	client, err := strconv.ParseUint(r.field(record, "client"), 10, 16)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: client: %v", ErrMalformedRecord, err)
	}

	tx, err := strconv.ParseUint(r.field(record, "tx"), 10, 32)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: tx: %v", ErrMalformedRecord, err)
	}

	return models.Transaction{
		Kind:   kind,
		Client: uint16(client),
		TxID:   uint32(tx),
		Amount: money.Parse(r.field(record, "amount")),
	}, nil
}
