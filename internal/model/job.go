package model

import "time"

// JobState is the lifecycle state of a conversion job.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a single conversion tracked by the executor.
// Values handed to callers are snapshots; mutating them has no effect.
type Job struct {
	TaskID     string     `json:"taskId"`
	InputPath  string     `json:"inputPath"`
	OutputPath string     `json:"outputPath"`
	State      JobState   `json:"state"`
	Progress   int        `json:"progress"` // 0..100
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
}

// Elapsed returns the job runtime so far, or the total runtime once ended.
func (j Job) Elapsed() time.Duration {
	if j.EndedAt != nil {
		return j.EndedAt.Sub(j.StartedAt)
	}
	return time.Since(j.StartedAt)
}
