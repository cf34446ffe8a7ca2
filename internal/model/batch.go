package model

// BatchOutcome classifies a finished batch.
type BatchOutcome string

const (
	BatchSuccess BatchOutcome = "success" // ≥1 succeeded, 0 failed
	BatchPartial BatchOutcome = "partial" // ≥1 succeeded, ≥1 failed
	BatchFailed  BatchOutcome = "failed"  // 0 succeeded
)

// FileError attributes a failure or a validation rejection to one input.
type FileError struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

// BatchReport aggregates a batch run. It is built once, after the last job.
type BatchReport struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Invalid   int `json:"invalid"`

	SucceededFiles []string     `json:"succeededFiles"`
	Failures       []FileError  `json:"failures"`
	InvalidFiles   []FileError  `json:"invalidFiles"`
	Outcome        BatchOutcome `json:"outcome"`
}

// Finalize derives the counts and the outcome from the collected lists.
func (r *BatchReport) Finalize() {
	r.Succeeded = len(r.SucceededFiles)
	r.Failed = len(r.Failures)
	r.Invalid = len(r.InvalidFiles)
	switch {
	case r.Succeeded > 0 && r.Failed == 0:
		r.Outcome = BatchSuccess
	case r.Succeeded > 0:
		r.Outcome = BatchPartial
	default:
		r.Outcome = BatchFailed
	}
}

// Success is true when at least one file converted.
func (r *BatchReport) Success() bool {
	return r.Succeeded > 0
}
