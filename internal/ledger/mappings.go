package ledger

import (
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/shopspring/decimal"
)

var mappingColumns = []string{
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
}

// MappingStore holds the denormalized mapping table: one row per internal
// record with the chosen SBS entry's lookup fields joined in. The pipeline
// writes it after a run; the reconciler reads it, folds in corrections, and
// writes the revised table that becomes the next run's baseline.
type MappingStore struct {
	path string
}

// NewMappingStore creates a handle on the mapping table at path.
func NewMappingStore(path string) *MappingStore {
	return &MappingStore{path: path}
}

// Read loads the full mapping table. A missing file reads as empty.
func (s *MappingStore) Read() ([]record.LedgerRow, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}
	out := make([]record.LedgerRow, 0, len(rows))
	for _, row := range rows {
		price, _ := decimal.NewFromString(field(row, 3))
		out = append(out, record.LedgerRow{
			Company:           field(row, 0),
			ServiceCode:       field(row, 1),
			Description:       field(row, 2),
			Price:             price,
			ServiceKey:        field(row, 4),
			Classification:    field(row, 5),
			Category:          field(row, 6),
			SBSCode:           field(row, 7),
			SBSCodeHyphenated: field(row, 8),
			ShortDescription:  field(row, 9),
			LongDescription:   field(row, 10),
			Definition:        field(row, 11),
			ChapterName:       field(row, 12),
			BlockName:         field(row, 13),
		})
	}
	return out, nil
}

// Write atomically replaces the mapping table with the given rows.
func (s *MappingStore) Write(rows []record.LedgerRow) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = mappingFields(r)
	}
	return writeAll(s.path, mappingColumns, out)
}

func mappingFields(r record.LedgerRow) []string {
	return []string{
		r.Company,
		r.ServiceCode,
		r.Description,
		r.Price.String(),
		r.ServiceKey,
		r.Classification,
		r.Category,
		r.SBSCode,
		r.SBSCodeHyphenated,
		r.ShortDescription,
		r.LongDescription,
		r.Definition,
		r.ChapterName,
		r.BlockName,
	}
}
