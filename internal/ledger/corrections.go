package ledger

import (
	"sort"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/shopspring/decimal"
)

var validationColumns = []string{
	"INSURANCE_COMPANY",
	"SERVICE_CODE",
	"SERVICE_DESCRIPTION",
	"PRICE",
	"SERVICE_KEY",
	"SERVICE_CLASSIFICATION",
	"SERVICE_CATEGORY",
	"SBS Code",
	"SBS Code (Hyphenated)",
	"SHORT_DESCRIPTION",
	"Long Description",
	"Definition",
	"Chapter Name",
	"Block Name",
	"Validation (Correct / In Correct)",
	"Correct SBS Code",
	"Correct SBS Short / Long Description",
	"Validated By",
}

// CorrectionStore is the append-only validation sheet written by the review
// side. Rows are never deleted, only superseded: the read side resolves the
// latest row per (company, service code).
type CorrectionStore struct {
	path string
}

// NewCorrectionStore creates a handle on the validation sheet at path.
func NewCorrectionStore(path string) *CorrectionStore {
	return &CorrectionStore{path: path}
}

// Init writes the column header if the file does not exist yet.
func (s *CorrectionStore) Init() error {
	return ensureHeader(s.path, validationColumns)
}

// Apply appends the validated row. Re-applying a row identical to the latest
// persisted row for the same key is a no-op, so retried submissions do not
// grow the file.
func (s *CorrectionStore) Apply(row record.LedgerRow) error {
	if err := s.Init(); err != nil {
		return err
	}

	latest, err := s.Latest()
	if err != nil {
		return err
	}
	if prev, ok := latest[row.Key()]; ok && prev.Equal(row) {
		return nil
	}

	return appendRow(s.path, validationFields(row))
}

// All reads every validated row in append order.
func (s *CorrectionStore) All() ([]record.LedgerRow, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}
	out := make([]record.LedgerRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, validationRow(row))
	}
	return out, nil
}

// Latest resolves last-write-wins per (company, service code).
func (s *CorrectionStore) Latest() (map[string]record.LedgerRow, error) {
	rows, err := s.All()
	if err != nil {
		return nil, err
	}
	latest := make(map[string]record.LedgerRow, len(rows))
	for _, r := range rows {
		latest[r.Key()] = r
	}
	return latest, nil
}

// Events converts the latest validated rows into correction events keyed on
// service code, the form the reconciler consumes. Events are ordered by
// (company, service code) so repeat reads yield identical sequences.
func (s *CorrectionStore) Events() ([]record.CorrectionEvent, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}
	events := make([]record.CorrectionEvent, 0, len(latest))
	for _, r := range latest {
		events = append(events, record.CorrectionEvent{
			Company:              r.Company,
			ServiceCode:          r.ServiceCode,
			ValidationStatus:     r.ValidationStatus,
			CorrectedCode:        r.CorrectedCode,
			CorrectedDescription: r.CorrectedDescription,
			Reviewer:             r.ValidatedBy,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Company != events[j].Company {
			return events[i].Company < events[j].Company
		}
		return events[i].ServiceCode < events[j].ServiceCode
	})
	return events, nil
}

func validationFields(r record.LedgerRow) []string {
	return append(mappingFields(r),
		r.ValidationStatus,
		r.CorrectedCode,
		r.CorrectedDescription,
		r.ValidatedBy,
	)
}

func validationRow(row []string) record.LedgerRow {
	price, _ := decimal.NewFromString(field(row, 3))
	return record.LedgerRow{
		Company:              field(row, 0),
		ServiceCode:          field(row, 1),
		Description:          field(row, 2),
		Price:                price,
		ServiceKey:           field(row, 4),
		Classification:       field(row, 5),
		Category:             field(row, 6),
		SBSCode:              field(row, 7),
		SBSCodeHyphenated:    field(row, 8),
		ShortDescription:     field(row, 9),
		LongDescription:      field(row, 10),
		Definition:           field(row, 11),
		ChapterName:          field(row, 12),
		BlockName:            field(row, 13),
		ValidationStatus:     field(row, 14),
		CorrectedCode:        field(row, 15),
		CorrectedDescription: field(row, 16),
		ValidatedBy:          field(row, 17),
	}
}
