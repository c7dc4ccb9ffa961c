package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

var failureColumns = []string{
	"INSURANCE_COMPANY",
	"SERVICE_CODE",
	"SERVICE_DESCRIPTION",
	"PRICE",
	"SERVICE_KEY",
	"SERVICE_CLASSIFICATION",
	"SERVICE_CATEGORY",
	"Error",
	"Traceback",
}

// Failure is one record that could not be adjudicated, with the error and
// the stack context captured at the point of failure.
type Failure struct {
	Record    record.InternalRecord
	Error     string
	Traceback string
}

// FailureStore is the append-only per-run failure file, parallel to the
// results store. A row here never blocks subsequent records.
type FailureStore struct {
	path string
}

// NewFailureStore creates a handle on the failures file at path.
func NewFailureStore(path string) *FailureStore {
	return &FailureStore{path: path}
}

// Init writes the column header if the file does not exist yet.
func (s *FailureStore) Init() error {
	return ensureHeader(s.path, failureColumns)
}

// Append durably adds one failure row.
func (s *FailureStore) Append(f Failure) error {
	return appendRow(s.path, []string{
		f.Record.Company,
		f.Record.ServiceCode,
		f.Record.Description,
		f.Record.Price.String(),
		f.Record.ServiceKey,
		f.Record.Classification,
		f.Record.Category,
		f.Error,
		f.Traceback,
	})
}

// Count returns the number of failure rows on disk.
func (s *FailureStore) Count() (int, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// All reads every failure row in append order.
func (s *FailureStore) All() ([]Failure, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}
	out := make([]Failure, 0, len(rows))
	for _, row := range rows {
		price, _ := decimal.NewFromString(field(row, 3))
		out = append(out, Failure{
			Record: record.InternalRecord{
				Company:        field(row, 0),
				ServiceCode:    field(row, 1),
				Description:    field(row, 2),
				Price:          price,
				ServiceKey:     field(row, 4),
				Classification: field(row, 5),
				Category:       field(row, 6),
			},
			Error:     field(row, 7),
			Traceback: field(row, 8),
		})
	}
	return out, nil
}
