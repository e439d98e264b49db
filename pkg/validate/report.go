package validate

// Report is the structured result of one validation run. It is always
// returned as data, never as an error: the caller decides whether an
// invalid batch aborts anything.
type Report struct {
	RecordCount  int      `json:"record_count"`
	SchemaErrors []string `json:"schema_errors"`
	CoverageGaps []string `json:"coverage_gaps"`
	Anomalies    []string `json:"anomalies"`
	Valid        bool     `json:"valid"`
}

func newReport(recordCount int) *Report {
	return &Report{
		RecordCount:  recordCount,
		SchemaErrors: []string{},
		CoverageGaps: []string{},
		Anomalies:    []string{},
		Valid:        true,
	}
}

// IssueCount returns the total number of findings across all categories.
func (r *Report) IssueCount() int {
	return len(r.SchemaErrors) + len(r.CoverageGaps) + len(r.Anomalies)
}
