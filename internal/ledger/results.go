package ledger

// Result is one processed record's outcome in the results store.
type Result struct {
	ServiceCode         string
	Description         string
	SBSCode             string
	SBSShortDescription string
	Explanation         string
}

var resultColumns = []string{
	"Internal_Service_Code",
	"Internal_Description",
	"Matched_SBS_Code",
	"Matched_SBS_Short_Description",
	"LLM_Explanation",
}

// ResultStore is the append-only per-run results file. One row per processed
// internal record; append is the only mutation during the mapping phase.
type ResultStore struct {
	path string
}

// NewResultStore creates a handle on the results file at path.
func NewResultStore(path string) *ResultStore {
	return &ResultStore{path: path}
}

// Init writes the column header if the file does not exist yet.
func (s *ResultStore) Init() error {
	return ensureHeader(s.path, resultColumns)
}

// DoneCodes returns the set of service codes already present, used to skip
// completed records when resuming an interrupted run.
func (s *ResultStore) DoneCodes() (map[string]bool, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(rows))
	for _, row := range rows {
		if code := field(row, 0); code != "" {
			done[code] = true
		}
	}
	return done, nil
}

// Append durably adds exactly one result row.
func (s *ResultStore) Append(r Result) error {
	return appendRow(s.path, []string{
		r.ServiceCode,
		r.Description,
		r.SBSCode,
		r.SBSShortDescription,
		r.Explanation,
	})
}

// All reads every result row in append order.
func (s *ResultStore) All() ([]Result, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			ServiceCode:         field(row, 0),
			Description:         field(row, 1),
			SBSCode:             field(row, 2),
			SBSShortDescription: field(row, 3),
			Explanation:         field(row, 4),
		})
	}
	return results, nil
}
