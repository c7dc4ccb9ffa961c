package ledger

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/shopspring/decimal"
)

func TestResultStore_InitWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	store := NewResultStore(path)

	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.Append(Result{ServiceCode: "S1", Description: "X-RAY"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Second init must not truncate existing data.
	if err := store.Init(); err != nil {
		t.Fatalf("re-init: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "Internal_Service_Code" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "S1" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestResultStore_DoneCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	store := NewResultStore(path)

	// Missing file reads as empty.
	done, err := store.DoneCodes()
	if err != nil {
		t.Fatalf("done codes on missing file: %v", err)
	}
	if len(done) != 0 {
		t.Fatalf("expected no done codes, got %d", len(done))
	}

	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"S1", "S2", "S1"} {
		if err := store.Append(Result{ServiceCode: code}); err != nil {
			t.Fatal(err)
		}
	}

	done, err = store.DoneCodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 2 || !done["S1"] || !done["S2"] {
		t.Errorf("done codes = %v", done)
	}
}

func TestResultStore_RoundTripWithCommasAndNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	store := NewResultStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	in := Result{
		ServiceCode:         "S1",
		Description:         "X-RAY, CHEST (PA, LAT)",
		SBSCode:             "73-000",
		SBSShortDescription: "X-RAY CHEST",
		Explanation:         "matches terminology\nand classification",
	}
	if err := store.Append(in); err != nil {
		t.Fatal(err)
	}

	all, err := store.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0] != in {
		t.Errorf("round trip: got %+v, want %+v", all, in)
	}
}

func TestFailureStore_AppendAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.csv")
	store := NewFailureStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	rec := record.InternalRecord{
		Company:        "TESTCO",
		ServiceCode:    "S1",
		Description:    "UNKNOWN SERVICE",
		Classification: "LAB",
		Category:       "HEMATOLOGY",
		Price:          decimal.NewFromInt(120),
	}
	err := store.Append(Failure{
		Record:    rec,
		Error:     errors.New("model timeout").Error(),
		Traceback: "goroutine 1 [running]:\n...",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestMappingStore_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.csv")
	store := NewMappingStore(path)

	rows := []record.LedgerRow{
		{
			Company:           "TESTCO",
			ServiceCode:       "S1",
			Description:       "X-RAY CHEST",
			Price:             decimal.RequireFromString("150.50"),
			SBSCode:           "73000",
			SBSCodeHyphenated: "73-000-00-10",
			ShortDescription:  "X-RAY CHEST",
			ChapterName:       "Imaging Services",
			BlockName:         "Plain Radiography",
		},
		{Company: "TESTCO", ServiceCode: "S2", Description: "UNMAPPED"},
	}
	if err := store.Write(rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	if !got[0].Equal(rows[0]) {
		t.Errorf("row 0: got %+v, want %+v", got[0], rows[0])
	}
	if !got[0].Price.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("price round trip: %s", got[0].Price)
	}
}
