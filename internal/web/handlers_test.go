package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

var errMockRead = errors.New("read error")

type mockMappings struct {
	ReadFunc func() ([]record.LedgerRow, error)
}

func (m *mockMappings) Read() ([]record.LedgerRow, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc()
	}
	return nil, nil
}

type mockCorrections struct {
	Applied    []record.LedgerRow
	ApplyFunc  func(record.LedgerRow) error
	LatestFunc func() (map[string]record.LedgerRow, error)
}

func (m *mockCorrections) Apply(row record.LedgerRow) error {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(row)
	}
	m.Applied = append(m.Applied, row)
	return nil
}

func (m *mockCorrections) Latest() (map[string]record.LedgerRow, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc()
	}
	return nil, nil
}

func mappingRows() []record.LedgerRow {
	return []record.LedgerRow{
		{
			Company:           "Bupa",
			ServiceCode:       "100",
			Description:       "X-RAY CHEST PA VIEW",
			SBSCode:           "10101",
			SBSCodeHyphenated: "101-01",
			ShortDescription:  "X-RAY CHEST",
		},
		{
			Company:     "Tawuniya",
			ServiceCode: "200",
			Description: "BLOOD PICTURE COMPLETE",
		},
	}
}

func newTestServer(mappings *mockMappings, corrections *mockCorrections) *Server {
	return NewServer(mappings, corrections, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return got
}

func TestListMappings(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	corrections := &mockCorrections{LatestFunc: func() (map[string]record.LedgerRow, error) {
		validated := mappingRows()[0]
		validated.ValidationStatus = record.ValidationCorrect
		validated.ValidatedBy = "reviewer@ahj"
		return map[string]record.LedgerRow{validated.Key(): validated}, nil
	}}
	s := newTestServer(mappings, corrections)

	w := doRequest(t, s, http.MethodGet, "/api/mappings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	got := decodeBody(t, w)
	if got["count"].(float64) != 2 {
		t.Errorf("Expected 2 mappings, got %v", got["count"])
	}
	first := got["mappings"].([]any)[0].(map[string]any)
	if first["validation_status"] != record.ValidationCorrect {
		t.Errorf("Validation overlay missing, got %v", first["validation_status"])
	}
}

func TestListMappingsFiltersByCompany(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	s := newTestServer(mappings, &mockCorrections{})

	w := doRequest(t, s, http.MethodGet, "/api/mappings?company=Tawuniya", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["count"].(float64) != 1 {
		t.Errorf("Expected 1 mapping, got %v", got["count"])
	}
}

func TestListMappingsReadError(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return nil, errMockRead
	}}
	s := newTestServer(mappings, &mockCorrections{})

	w := doRequest(t, s, http.MethodGet, "/api/mappings", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
}

func TestGetMapping(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	s := newTestServer(mappings, &mockCorrections{})

	w := doRequest(t, s, http.MethodGet, "/api/mappings/100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/mappings/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown code, got %d", w.Code)
	}
}

func TestSubmitCorrection(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	corrections := &mockCorrections{}
	s := newTestServer(mappings, corrections)

	body, _ := json.Marshal(record.CorrectionEvent{
		Company:              "Bupa",
		ServiceCode:          "100",
		ValidationStatus:     record.ValidationIncorrect,
		CorrectedCode:        "202-02",
		CorrectedDescription: "CBC",
		Reviewer:             "reviewer@ahj",
	})
	w := doRequest(t, s, http.MethodPost, "/api/corrections", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if id, _ := decodeBody(t, w)["id"].(string); id == "" {
		t.Error("Expected an event id in the response")
	}

	if len(corrections.Applied) != 1 {
		t.Fatalf("Expected 1 applied row, got %d", len(corrections.Applied))
	}
	applied := corrections.Applied[0]
	// The validated row carries the mapping fields plus the review fields.
	if applied.SBSCodeHyphenated != "101-01" {
		t.Errorf("Mapping fields not carried, got %+v", applied)
	}
	if applied.ValidationStatus != record.ValidationIncorrect || applied.CorrectedCode != "202-02" {
		t.Errorf("Review fields not set, got %+v", applied)
	}
	if applied.ValidatedBy != "reviewer@ahj" {
		t.Errorf("Reviewer not recorded, got '%s'", applied.ValidatedBy)
	}
}

func TestSubmitCorrectionValidation(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	s := newTestServer(mappings, &mockCorrections{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing reviewer", `{"insurance_company":"Bupa","service_code":"100","validation_status":"Correct"}`, http.StatusBadRequest},
		{"bad status", `{"insurance_company":"Bupa","service_code":"100","validation_status":"Maybe","validated_by":"r"}`, http.StatusBadRequest},
		{"unknown row", `{"insurance_company":"Bupa","service_code":"999","validation_status":"Correct","validated_by":"r"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/api/corrections", []byte(tt.body))
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestStats(t *testing.T) {
	mappings := &mockMappings{ReadFunc: func() ([]record.LedgerRow, error) {
		return mappingRows(), nil
	}}
	corrections := &mockCorrections{LatestFunc: func() (map[string]record.LedgerRow, error) {
		validated := mappingRows()[0]
		validated.ValidationStatus = record.ValidationCorrect
		return map[string]record.LedgerRow{validated.Key(): validated}, nil
	}}
	s := newTestServer(mappings, corrections)

	w := doRequest(t, s, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	got := decodeBody(t, w)
	if got["total"].(float64) != 2 || got["mapped"].(float64) != 1 {
		t.Errorf("Unexpected stats: %v", got)
	}
	if got["correct"].(float64) != 1 || got["incorrect"].(float64) != 0 {
		t.Errorf("Unexpected validation stats: %v", got)
	}
}
