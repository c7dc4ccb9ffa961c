// Package dataset loads the AHJ price list and the SBS reference set from
// their fixed-schema CSV exports. Schema problems are input errors and fail
// the run before any processing begins.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// Payers excluded from mapping: cash rows are not insurance-company records.
var excludedCompanies = map[string]bool{
	"0":                     true,
	"Cash":                  true,
	"Item Cash":             true,
	"OUTSIDE DOCTOR (CASH)": true,
}

// AHJ price list columns.
const (
	colCompany        = "INSURANCE_COMPANY"
	colServiceCode    = "SERVICE_CODE"
	colDescription    = "SERVICE_DESCRIPTION"
	colPrice          = "PRICE"
	colServiceKey     = "SERVICE_KEY"
	colClassification = "SERVICE_CLASSIFICATION"
	colCategory       = "SERVICE_CATEGORY"
)

// SBS reference set columns.
const (
	colSBSCode     = "SBS Code"
	colSBSCodeHyph = "SBS Code (Hyphenated)"
	colShortDesc   = "Short Description"
	colLongDesc    = "Long Description"
	colDefinition  = "Definition"
	colChapterName = "Chapter Name"
	colBlockName   = "Block Name"
)

// LoadInternalRecords reads the AHJ price list, dropping excluded payers.
func LoadInternalRecords(path string) ([]record.InternalRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idx, err := columnIndex(header, path,
		colCompany, colServiceCode, colDescription, colClassification, colCategory)
	if err != nil {
		return nil, err
	}

	var out []record.InternalRecord
	for i, row := range rows {
		company := strings.TrimSpace(get(row, idx[colCompany]))
		if excludedCompanies[company] {
			continue
		}

		r := record.InternalRecord{
			Company:        company,
			ServiceCode:    strings.TrimSpace(get(row, idx[colServiceCode])),
			Description:    get(row, idx[colDescription]),
			ServiceKey:     get(row, col(idx, colServiceKey)),
			Classification: get(row, idx[colClassification]),
			Category:       get(row, idx[colCategory]),
		}
		if r.ServiceCode == "" {
			return nil, fmt.Errorf("%s: row %d: missing %s", path, i+2, colServiceCode)
		}

		if raw := strings.TrimSpace(get(row, col(idx, colPrice))); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: bad %s %q: %w", path, i+2, colPrice, raw, err)
			}
			r.Price = price
		}

		out = append(out, r)
	}
	return out, nil
}

// LoadStandardEntries reads the SBS reference set with descriptions
// normalized for use as join and embedding keys. Entries missing both
// descriptions are rejected: a present code guarantees non-null descriptions.
func LoadStandardEntries(path string) ([]record.StandardCodeEntry, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idx, err := columnIndex(header, path, colSBSCode, colShortDesc, colLongDesc)
	if err != nil {
		return nil, err
	}

	var out []record.StandardCodeEntry
	for i, row := range rows {
		e := record.StandardCodeEntry{
			Code:             strings.TrimSpace(get(row, idx[colSBSCode])),
			CodeHyphenated:   strings.TrimSpace(get(row, col(idx, colSBSCodeHyph))),
			ShortDescription: get(row, idx[colShortDesc]),
			LongDescription:  get(row, idx[colLongDesc]),
			Definition:       get(row, col(idx, colDefinition)),
			ChapterName:      get(row, col(idx, colChapterName)),
			BlockName:        get(row, col(idx, colBlockName)),
		}
		if e.Code == "" {
			continue
		}
		record.NormalizeEntry(&e)
		if e.ShortDescription == "" && e.LongDescription == "" {
			return nil, fmt.Errorf("%s: row %d: code %s has no descriptions", path, i+2, e.Code)
		}
		if e.CodeHyphenated == "" {
			e.CodeHyphenated = e.Code
		}
		out = append(out, e)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: reference set is empty", path)
	}
	return out, nil
}

// EntriesByCode indexes the reference set by both plain and hyphenated code,
// first occurrence wins.
func EntriesByCode(entries []record.StandardCodeEntry) map[string]record.StandardCodeEntry {
	byCode := make(map[string]record.StandardCodeEntry, len(entries)*2)
	for _, e := range entries {
		if _, ok := byCode[e.Code]; !ok {
			byCode[e.Code] = e
		}
		if _, ok := byCode[e.CodeHyphenated]; !ok {
			byCode[e.CodeHyphenated] = e
		}
	}
	return byCode
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open record store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header row", path)
	}
	return rows[0], rows[1:], nil
}

// columnIndex maps every header name to its position and verifies the
// required columns are present.
func columnIndex(header []string, path string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}
	return idx, nil
}

func get(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}

// col returns the position of an optional column, or -1 when absent.
func col(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}
